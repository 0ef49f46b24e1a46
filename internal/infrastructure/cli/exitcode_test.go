package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kaalsec/kaalsec/internal/domain"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"not found", domain.ErrNotFound, ExitNotFound},
		{"wrapped not found", fmt.Errorf("suggestion 7: %w", domain.ErrNotFound), ExitNotFound},
		{"expired", domain.ErrExpired, ExitExpired},
		{"blocked", fmt.Errorf("rm -rf /: %w", domain.ErrBlocked), ExitBlocked},
		{"audit io", fmt.Errorf("%w: disk full", domain.ErrAuditIO), ExitIOError},
		{"transport", domain.ErrTransport, ExitBackend},
		{"timeout", fmt.Errorf("ollama: %w", domain.ErrTimeout), ExitBackend},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
