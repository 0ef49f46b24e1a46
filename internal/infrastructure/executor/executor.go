// Package executor hands confirmed command text to the host shell and
// captures a bounded view of what happened.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// TruncationMarker is appended whenever captured output exceeds the excerpt
// budget. Longer output is truncated, never silently dropped.
const TruncationMarker = "... (truncated)"

// LocalExecutor runs commands on the host shell. It inherits the caller's
// environment and imposes no timeout unless one is configured.
type LocalExecutor struct {
	shell        string
	excerptBytes int
	timeout      time.Duration
}

// NewLocalExecutor builds an executor; shell defaults to $SHELL then /bin/sh.
// timeout zero means wait indefinitely.
func NewLocalExecutor(shell string, excerptBytes int, timeout time.Duration) *LocalExecutor {
	if shell == "" || shell == "auto" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	if excerptBytes <= 0 {
		excerptBytes = 4096
	}
	return &LocalExecutor{shell: shell, excerptBytes: excerptBytes, timeout: timeout}
}

// Execute implements ports.CommandExecutor. A nonzero exit code is reported
// in the result, not as an error: command failure is a normal terminal state.
// The error return is reserved for the executor itself failing to run the
// command at all.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (domain.ExecutionResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, e.shell, "-c", command)
	var output bytes.Buffer
	c.Stdout = &output
	c.Stderr = &output

	start := time.Now()
	err := c.Run()
	result := domain.ExecutionResult{Duration: time.Since(start)}
	result.Excerpt, result.Truncated = excerpt(output.Bytes(), e.excerptBytes)

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, err
	}
	return result, nil
}

func excerpt(output []byte, limit int) (string, bool) {
	if len(output) <= limit {
		return string(output), false
	}
	return string(output[:limit]) + "\n" + TruncationMarker, true
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
