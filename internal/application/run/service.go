// Package run drives the confirmation state machine: resolve, re-check
// policy, await confirmation, execute, and log. Every terminal state writes
// exactly one audit entry before control returns; no execution attempt,
// confirmed or declined or blocked, escapes the trail.
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// Request describes one run invocation. Either SuggestionID (>0) or
// AdHocCommand must be set.
type Request struct {
	SuggestionID  int
	BatchSelector string
	AdHocCommand  string
	AdHocTool     string
	AutoConfirm   bool
	Notes         string
	Important     bool
}

// Result reports the terminal state reached and the log entry written.
type Result struct {
	Outcome    domain.Outcome
	Decision   domain.PolicyDecision
	Entry      domain.LogEntry
	Execution  *domain.ExecutionResult
	Suggestion *domain.Suggestion
}

// Service orchestrates a run end-to-end.
type Service struct {
	Store    ports.SuggestionRepository
	Policy   ports.PolicyEngine
	Executor ports.CommandExecutor
	Audit    ports.AuditLogger
	Prompter ports.ConfirmationPrompter
	Logger   ports.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Run processes a single execution attempt.
//
// Policy re-evaluation here is mandatory even though the suggestion was
// checked at proposal time: configuration or environment may have changed
// between suggest and run.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	if s.Store == nil || s.Policy == nil || s.Executor == nil || s.Audit == nil || s.Logger == nil {
		return Result{}, errors.New("run.Service dependencies not satisfied")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	// Resolved
	var suggestion domain.Suggestion
	if req.AdHocCommand != "" {
		suggestion = domain.Suggestion{
			Tool:        req.AdHocTool,
			CommandText: req.AdHocCommand,
		}
	} else {
		resolved, err := s.Store.Resolve(req.SuggestionID, req.BatchSelector, now())
		if err != nil {
			return Result{}, err
		}
		suggestion = resolved
	}

	result := Result{Suggestion: &suggestion}
	entry := s.newEntry(suggestion, req, now())

	// The audit trail must be guaranteed before anything can run. A log we
	// cannot write to aborts the attempt here, before any prompt.
	if err := s.Audit.Probe(entry.SessionID); err != nil {
		return Result{}, err
	}

	// PolicyChecked
	decision := s.Policy.Evaluate(domain.PolicySubject{
		Kind: domain.SubjectCommand,
		Text: suggestion.CommandText,
		Tool: suggestion.Tool,
	})
	result.Decision = decision
	entry.Reasons = decision.Reasons

	if decision.Blocked() {
		return s.finish(result, entry, domain.OutcomeBlocked,
			fmt.Errorf("%s: %w", suggestion.CommandText, domain.ErrBlocked))
	}

	// AwaitingConfirmation. The wait is unbounded; ctx cancellation (for
	// example an interrupt) counts as a decline and is still logged.
	confirmed, err := s.awaitConfirmation(ctx, req, decision, entry.DisplayedCommandText, suggestion.Tool)
	if err != nil || !confirmed {
		if err != nil {
			s.Logger.Debug("confirmation aborted", map[string]interface{}{"error": err.Error()})
		}
		return s.finish(result, entry, domain.OutcomeDeclined, nil)
	}

	// Executing: the literal command text runs, never the displayed form.
	execResult, execErr := s.Executor.Execute(ctx, suggestion.CommandText)
	result.Execution = &execResult
	entry.OutputExcerpt = s.Policy.Anonymise(execResult.Excerpt)

	switch {
	case execErr != nil:
		entry.Notes = joinNotes(entry.Notes, "executor: "+execErr.Error())
		return s.finish(result, entry, domain.OutcomeFailed, nil)
	case execResult.TimedOut:
		entry.Notes = joinNotes(entry.Notes, "timed out before completion")
		return s.finish(result, entry, domain.OutcomeFailed, nil)
	case execResult.ExitCode != 0:
		code := execResult.ExitCode
		entry.ExitCode = &code
		return s.finish(result, entry, domain.OutcomeFailed, nil)
	default:
		code := 0
		entry.ExitCode = &code
		return s.finish(result, entry, domain.OutcomeExecuted, nil)
	}
}

func (s *Service) newEntry(suggestion domain.Suggestion, req Request, now time.Time) domain.LogEntry {
	entry := domain.LogEntry{
		Timestamp:            now,
		SessionID:            domain.SessionIDFor(now),
		Tool:                 suggestion.Tool,
		CommandText:          suggestion.CommandText,
		DisplayedCommandText: s.Policy.Anonymise(suggestion.CommandText),
		Notes:                req.Notes,
		Important:            req.Important,
	}
	if suggestion.ID > 0 {
		id := suggestion.ID
		entry.SuggestionID = &id
	}
	return entry
}

func (s *Service) awaitConfirmation(ctx context.Context, req Request, decision domain.PolicyDecision, displayed string, tool string) (bool, error) {
	// --yes covers the normal confirmation only; a warn verdict always
	// demands its own, stronger acknowledgment.
	if req.AutoConfirm && decision.Verdict == domain.VerdictAllow {
		return true, nil
	}
	if s.Prompter == nil || !s.Prompter.Enabled() {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.Prompter.Confirm(ctx, decision, displayed, tool)
}

// finish writes the single audit entry for the terminal state. An append
// failure outranks the terminal error: callers must know the trail is broken.
func (s *Service) finish(result Result, entry domain.LogEntry, outcome domain.Outcome, terminalErr error) (Result, error) {
	entry.Outcome = outcome
	result.Outcome = outcome
	result.Entry = entry
	if err := s.Audit.Append(entry); err != nil {
		return result, err
	}
	return result, terminalErr
}

func joinNotes(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "; " + extra
}
