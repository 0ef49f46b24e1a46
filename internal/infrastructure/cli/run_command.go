package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kaalsec/kaalsec/internal/app"
	"github.com/kaalsec/kaalsec/internal/application/run"
)

func newRunCommand(container *app.Container) *cobra.Command {
	var (
		batch     string
		yes       bool
		notes     string
		important bool
	)

	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Resolve a cached suggestion, confirm and execute it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("suggestion id must be a positive integer, got %q", args[0])
			}

			result, err := container.RunService.Run(cmd.Context(), run.Request{
				SuggestionID:  id,
				BatchSelector: batch,
				AutoConfirm:   yes,
				Notes:         notes,
				Important:     important,
			})
			RenderRunResult(cmd.OutOrStdout(), result)
			return err
		},
	}

	cmd.Flags().StringVar(&batch, "batch", "", "Resolve against an older batch by its handle instead of the latest")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the normal confirmation (flagged commands still ask)")
	cmd.Flags().StringVar(&notes, "notes", "", "Operator note recorded with the log entry")
	cmd.Flags().BoolVar(&important, "important", false, "Flag the log entry for the report's notes of interest")
	return cmd
}

func newExecCommand(container *app.Container) *cobra.Command {
	var (
		yes       bool
		notes     string
		important bool
	)

	cmd := &cobra.Command{
		Use:   "exec <command...>",
		Short: "Run an ad hoc command through the same confirmation and audit path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := argText(args)
			result, err := container.RunService.Run(cmd.Context(), run.Request{
				AdHocCommand: command,
				AdHocTool:    firstField(command),
				AutoConfirm:  yes,
				Notes:        notes,
				Important:    important,
			})
			RenderRunResult(cmd.OutOrStdout(), result)
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the normal confirmation (flagged commands still ask)")
	cmd.Flags().StringVar(&notes, "notes", "", "Operator note recorded with the log entry")
	cmd.Flags().BoolVar(&important, "important", false, "Flag the log entry for the report's notes of interest")
	return cmd
}
