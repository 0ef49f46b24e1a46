// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// These interfaces form the contract between the application core and the
// infrastructure adapters. The application depends on the abstractions here,
// never on concrete databases, HTTP clients or CLI frameworks.
package ports

import (
	"context"
	"time"

	"github.com/kaalsec/kaalsec/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.kaalsec/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CompletionMode tells the backend what kind of answer is expected.
type CompletionMode string

const (
	ModeAsk     CompletionMode = "ask"
	ModeExplain CompletionMode = "explain"
	ModeSuggest CompletionMode = "suggest"
)

// CompletionRequest carries one prompt to the backend.
type CompletionRequest struct {
	Prompt string
	System string
	Mode   CompletionMode
}

// Backend is the narrow contract with the language-model provider. The core
// never depends on which provider answered. Failures surface as
// domain.ErrTimeout or domain.ErrTransport.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// BackendFactory builds a Backend from configuration.
type BackendFactory interface {
	ForConfig(domain.Config) (Backend, error)
}

// PolicyEngine classifies commands and prompts against safety rules.
// Evaluation is pure and deterministic given the same input and config.
type PolicyEngine interface {
	Evaluate(subject domain.PolicySubject) domain.PolicyDecision
	Anonymise(text string) string
}

// SuggestionRepository owns suggestion batches for their validity window.
type SuggestionRepository interface {
	// PutBatch assigns dense 1-based IDs, timestamps the batch and atomically
	// publishes it as the latest, invalidating previous batches.
	PutBatch(drafts []domain.Suggestion, now time.Time) (domain.Batch, error)
	// Resolve looks an ID up in the selected batch. selector may be empty
	// (latest) or a batch handle still retained on disk. Returns
	// domain.ErrNotFound or domain.ErrExpired on failure.
	Resolve(id int, selector string, now time.Time) (domain.Suggestion, error)
	// Latest returns the current batch if one exists.
	Latest() (domain.Batch, bool, error)
}

// AuditLogger is the append-only record of every execution attempt.
type AuditLogger interface {
	// Append durably writes one entry to the session's structured log and
	// human-readable trail. A failed append is an IOError: callers must not
	// execute commands they cannot log.
	Append(entry domain.LogEntry) error
	// Probe verifies the session log is writable without appending, so the
	// executor can refuse to run when the audit trail cannot be guaranteed.
	Probe(sessionID string) error
	// ReadSession returns the session's entries in append order. Missing
	// session files yield domain.ErrNotFound.
	ReadSession(sessionID string) ([]domain.LogEntry, error)
}

// AuditIndex is a best-effort queryable mirror of the audit log. It is never
// authoritative; a nil or failing index must not affect the audit trail.
type AuditIndex interface {
	Record(entry domain.LogEntry) error
	Search(limit int, term string) ([]domain.LogEntry, error)
}

// CommandExecutor runs confirmed command text in the configured shell.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// ConfirmationPrompter suspends for a single synchronous human response.
// The wait is unbounded; cancellation of ctx counts as a decline.
type ConfirmationPrompter interface {
	Confirm(ctx context.Context, decision domain.PolicyDecision, displayed string, tool string) (bool, error)
	Enabled() bool
}

// PluginRepository looks up YAML tool-knowledge files.
type PluginRepository interface {
	Lookup(toolName string) (domain.ToolPlugin, bool)
}

// ShellContextCollector is a read-only provider of shell surroundings used to
// enrich prompts.
type ShellContextCollector interface {
	Collect(cfg domain.Config) domain.ShellContext
}

// Logger provides structured logging for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
