// Package cli wires the cobra command tree over the application services.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kaalsec/kaalsec/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "kaalsec",
		Short: "KaalSec - pentest command assistant",
		Long: "KaalSec suggests security-testing commands, screens them against\n" +
			"safety rules, asks for confirmation before anything runs, and keeps an\n" +
			"append-only audit trail of every attempt.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSuggestCommand(container))
	root.AddCommand(newRunCommand(container))
	root.AddCommand(newExecCommand(container))
	root.AddCommand(newReportCommand(container))
	root.AddCommand(newAskCommand(container))
	root.AddCommand(newExplainCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newToolsCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}
