package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kaalsec/kaalsec/internal/app"
	"github.com/kaalsec/kaalsec/internal/application/run"
	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/infrastructure/policy"
)

// RenderBatch prints a suggestion batch as an ASCII table plus the rationale
// lines underneath each row. Command and rationale text pass through display
// first, so anonymised forms are what reach the operator; the stored command
// text stays untouched for execution.
func RenderBatch(out io.Writer, batch domain.Batch, display func(string) string) {
	if display == nil {
		display = func(s string) string { return s }
	}
	if len(batch.Items) == 0 {
		fmt.Fprintln(out, "No suggestions were produced.")
		return
	}

	widest := 0
	for _, item := range batch.Items {
		if len(item.Tool) > widest {
			widest = len(item.Tool)
		}
	}

	fmt.Fprintf(out, "%3s  %-6s  %-*s  %s\n", "ID", "RISK", widest, "TOOL", "COMMAND")
	for _, item := range batch.Items {
		fmt.Fprintf(out, "%3d  %-6s  %-*s  %s\n", item.ID, item.RiskLevel, widest, item.Tool, display(item.CommandText))
		if item.Rationale != "" {
			fmt.Fprintf(out, "%3s  %s\n", "", display(item.Rationale))
		}
	}
	fmt.Fprintf(out, "\nBatch %s expires %s. Run one with: kaalsec run <id>\n",
		batch.Handle, humanize.Time(batch.ExpiresAt))
}

// RenderRunResult prints the terminal state of one run attempt.
func RenderRunResult(out io.Writer, result run.Result) {
	switch result.Outcome {
	case domain.OutcomeExecuted:
		fmt.Fprintf(out, "\nCommand completed (exit 0).\n")
	case domain.OutcomeFailed:
		if result.Execution != nil && result.Execution.TimedOut {
			fmt.Fprintln(out, "\nCommand timed out.")
		} else if result.Entry.ExitCode != nil {
			fmt.Fprintf(out, "\nCommand failed (exit %d).\n", *result.Entry.ExitCode)
		} else {
			fmt.Fprintln(out, "\nCommand failed to start.")
		}
	case domain.OutcomeDeclined:
		fmt.Fprintln(out, "Declined. Nothing was executed.")
	case domain.OutcomeBlocked:
		fmt.Fprintln(out, "Blocked by policy. Nothing was executed.")
		for _, reason := range result.Entry.Reasons {
			fmt.Fprintf(out, " - %s\n", reason)
		}
	}

	if result.Execution != nil && result.Entry.OutputExcerpt != "" {
		fmt.Fprintln(out, "\nOutput:")
		fmt.Fprintln(out, result.Entry.OutputExcerpt)
	}
}

// maybePrintBanner shows the legal disclaimer once per backend-facing
// invocation when enabled in config.
func maybePrintBanner(out io.Writer, container *app.Container) {
	if container.Config.Core.LegalBanner {
		fmt.Fprintln(out, policy.LegalBanner)
	}
}

func argText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func firstField(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
