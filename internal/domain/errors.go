package domain

import "errors"

// Sentinel errors shared across the pipeline. The CLI maps each class to a
// distinct exit code so scripts can tell them apart.
var (
	// ErrNotFound: a suggestion ID or report date does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrExpired: the suggestion batch's validity window has elapsed.
	ErrExpired = errors.New("suggestion batch expired")

	// ErrBlocked: policy veto. Terminal, non-retryable.
	ErrBlocked = errors.New("blocked by policy")

	// ErrTransport: the backend was unreachable.
	ErrTransport = errors.New("backend transport error")

	// ErrTimeout: the backend did not answer in time.
	ErrTimeout = errors.New("backend timeout")

	// ErrAuditIO: the audit trail could not be written or probed. Nothing
	// executes while this holds.
	ErrAuditIO = errors.New("audit log unavailable")
)
