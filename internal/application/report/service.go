// Package report renders a session's audit entries into a Markdown report.
// The builder only reads log data; two runs over the same entries produce
// identical output apart from the generation timestamp.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

const dateLayout = "2006-01-02"

// Service builds reports from the audit trail.
type Service struct {
	Audit  ports.AuditLogger
	Logger ports.Logger

	Now func() time.Time
}

// ResolveDate turns a CLI date argument into a session ID. "today" and an
// empty argument mean the current day; anything else must parse as
// YYYY-MM-DD.
func (s *Service) ResolveDate(arg string) (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	arg = strings.TrimSpace(arg)
	if arg == "" || strings.EqualFold(arg, "today") {
		return domain.SessionIDFor(now()), nil
	}
	if _, err := time.Parse(dateLayout, arg); err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", arg, err)
	}
	return arg, nil
}

// Build reads the session's entries and renders the report. A missing session
// file surfaces domain.ErrNotFound so callers can distinguish "no activity
// that day" from a day with an empty but present log.
func (s *Service) Build(dateArg string) (string, error) {
	sessionID, err := s.ResolveDate(dateArg)
	if err != nil {
		return "", err
	}
	entries, err := s.Audit.ReadSession(sessionID)
	if err != nil {
		return "", err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return render(sessionID, entries, now()), nil
}

func render(sessionID string, entries []domain.LogEntry, generated time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Engagement Report %s\n\n", sessionID)
	fmt.Fprintf(&b, "_Generated %s_\n\n", generated.UTC().Format(time.RFC3339))

	counts := map[domain.Outcome]int{}
	for _, e := range entries {
		counts[e.Outcome]++
	}
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Outcome | Count |\n|---|---|\n")
	for _, outcome := range []domain.Outcome{
		domain.OutcomeExecuted, domain.OutcomeFailed, domain.OutcomeDeclined, domain.OutcomeBlocked,
	} {
		fmt.Fprintf(&b, "| %s | %d |\n", outcome, counts[outcome])
	}
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString("No execution attempts were recorded for this session.\n")
		return b.String()
	}

	writeExecuted(&b, entries)
	writeDeclinedAndBlocked(&b, entries)
	writeNotesOfInterest(&b, entries)
	return b.String()
}

// writeExecuted groups executed and failed runs by tool, tools in sorted
// order, entries within a tool in append order.
func writeExecuted(b *strings.Builder, entries []domain.LogEntry) {
	byTool := map[string][]domain.LogEntry{}
	for _, e := range entries {
		if e.Outcome != domain.OutcomeExecuted && e.Outcome != domain.OutcomeFailed {
			continue
		}
		tool := e.Tool
		if tool == "" {
			tool = "(ad hoc)"
		}
		byTool[tool] = append(byTool[tool], e)
	}
	if len(byTool) == 0 {
		return
	}

	tools := make([]string, 0, len(byTool))
	for tool := range byTool {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	b.WriteString("## Executed commands\n\n")
	for _, tool := range tools {
		fmt.Fprintf(b, "### %s\n\n", tool)
		for _, e := range byTool[tool] {
			fmt.Fprintf(b, "- `%s` at %s, %s%s\n",
				e.DisplayedCommandText, e.Timestamp.UTC().Format("15:04:05"), e.Outcome, exitSuffix(e))
			if e.Notes != "" {
				fmt.Fprintf(b, "  - notes: %s\n", e.Notes)
			}
			if e.OutputExcerpt != "" {
				fmt.Fprintf(b, "\n  ```\n%s\n  ```\n", indent(e.OutputExcerpt, "  "))
			}
		}
		b.WriteString("\n")
	}
}

func writeDeclinedAndBlocked(b *strings.Builder, entries []domain.LogEntry) {
	var rows []domain.LogEntry
	for _, e := range entries {
		if e.Outcome == domain.OutcomeDeclined || e.Outcome == domain.OutcomeBlocked {
			rows = append(rows, e)
		}
	}
	if len(rows) == 0 {
		return
	}
	b.WriteString("## Declined and blocked\n\n")
	b.WriteString("| Time | Outcome | Command | Reasons |\n|---|---|---|---|\n")
	for _, e := range rows {
		fmt.Fprintf(b, "| %s | %s | `%s` | %s |\n",
			e.Timestamp.UTC().Format("15:04:05"), e.Outcome,
			escapePipes(e.DisplayedCommandText), escapePipes(strings.Join(e.Reasons, "; ")))
	}
	b.WriteString("\n")
}

func writeNotesOfInterest(b *strings.Builder, entries []domain.LogEntry) {
	var flagged []domain.LogEntry
	for _, e := range entries {
		if e.Important {
			flagged = append(flagged, e)
		}
	}
	if len(flagged) == 0 {
		return
	}
	b.WriteString("## Notes of interest\n\n")
	for _, e := range flagged {
		fmt.Fprintf(b, "- %s `%s`", e.Timestamp.UTC().Format("15:04:05"), e.DisplayedCommandText)
		if e.Notes != "" {
			fmt.Fprintf(b, ": %s", e.Notes)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func exitSuffix(e domain.LogEntry) string {
	if e.ExitCode == nil {
		return ""
	}
	return fmt.Sprintf(" (exit %d)", *e.ExitCode)
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
