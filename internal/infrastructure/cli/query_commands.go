package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaalsec/kaalsec/internal/app"
)

func newAskCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask the backend a free-form question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), container.Config.BackendTimeout())
			defer cancel()

			maybePrintBanner(cmd.ErrOrStderr(), container)

			answer, err := container.QueryService.Ask(ctx, argText(args))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
			return nil
		},
	}
}

func newExplainCommand(container *app.Container) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "explain <command...>",
		Short: "Have the backend explain a command before you run it",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := argText(args)
			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return err
				}
				subject = string(data)
			}
			if subject == "" {
				return fmt.Errorf("provide a command or --file")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), container.Config.BackendTimeout())
			defer cancel()

			maybePrintBanner(cmd.ErrOrStderr(), container)

			answer, err := container.QueryService.Explain(ctx, subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "Explain the contents of a script file")
	return cmd
}
