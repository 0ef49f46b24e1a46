package domain

import "time"

// Outcome is the terminal state of one execution attempt.
type Outcome string

const (
	OutcomeExecuted Outcome = "executed"
	OutcomeDeclined Outcome = "declined"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeFailed   Outcome = "failed"
)

// LogEntry is one immutable record of an attempted command execution.
// CommandText is the literal text handed to the shell; DisplayedCommandText
// is what was shown to the operator (IP tokens may be anonymised there).
// The structured log schema evolves additively only: readers must tolerate
// unknown trailing fields.
type LogEntry struct {
	Timestamp            time.Time `json:"timestamp"`
	SessionID            string    `json:"session_id"`
	SuggestionID         *int      `json:"suggestion_id"`
	Tool                 string    `json:"tool,omitempty"`
	CommandText          string    `json:"command_text"`
	DisplayedCommandText string    `json:"displayed_command_text"`
	Outcome              Outcome   `json:"outcome"`
	ExitCode             *int      `json:"exit_code"`
	OutputExcerpt        string    `json:"output_excerpt,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	Important            bool      `json:"important"`
	Reasons              []string  `json:"reasons,omitempty"`
}

// SessionIDFor derives the session identifier for a point in time.
// Sessions group log entries by local calendar day.
func SessionIDFor(t time.Time) string {
	return t.Format("2006-01-02")
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	ExitCode  int
	Excerpt   string
	Truncated bool
	Duration  time.Duration
	TimedOut  bool
}
