package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kaalsec/kaalsec/internal/app"
	"github.com/kaalsec/kaalsec/internal/domain"
)

const defaultHistoryLimit = 20

func newHistoryCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		search string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent execution attempts across sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.Index.Search(limit, search)
			if err != nil {
				return fmt.Errorf("history index: %w", err)
			}
			renderHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max entries to show")
	cmd.Flags().StringVar(&search, "search", "", "Filter by a keyword in command, tool or notes")
	return cmd
}

func renderHistory(out io.Writer, entries []domain.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history recorded yet.")
		return
	}
	for _, entry := range entries {
		exit := "-"
		if entry.ExitCode != nil {
			exit = fmt.Sprintf("%d", *entry.ExitCode)
		}
		fmt.Fprintf(out, "%-14s  %-8s  %-4s  %s\n",
			humanize.Time(entry.Timestamp), entry.Outcome, exit, entry.DisplayedCommandText)
	}
}
