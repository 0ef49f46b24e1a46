package cli

import (
	"errors"

	"github.com/kaalsec/kaalsec/internal/domain"
)

// Exit codes, stable for scripting.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitNotFound = 2
	ExitExpired  = 3
	ExitBlocked  = 4
	ExitIOError  = 5
	ExitBackend  = 6
)

// ExitCode maps an error from the pipeline to the process exit code. A user
// decline is not an error and exits 0.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, domain.ErrExpired):
		return ExitExpired
	case errors.Is(err, domain.ErrBlocked):
		return ExitBlocked
	case errors.Is(err, domain.ErrAuditIO):
		return ExitIOError
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrTimeout):
		return ExitBackend
	default:
		return ExitError
	}
}
