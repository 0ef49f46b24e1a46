package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kaalsec/kaalsec/internal/app"
	"github.com/kaalsec/kaalsec/internal/application/suggest"
)

func newSuggestCommand(container *app.Container) *cobra.Command {
	var tool string

	cmd := &cobra.Command{
		Use:   "suggest <task...>",
		Short: "Propose commands for a task and cache them as the latest batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), container.Config.BackendTimeout())
			defer cancel()

			maybePrintBanner(cmd.ErrOrStderr(), container)

			result, err := container.SuggestService.Suggest(ctx, suggest.Request{
				Task: argText(args),
				Tool: tool,
			})
			if err != nil {
				return err
			}
			RenderBatch(cmd.OutOrStdout(), result.Batch, container.Policy.Anonymise)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tool, "tool", "t", "", "Bias suggestions toward a specific tool")
	return cmd
}
