package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaalsec/kaalsec/internal/app"
)

func newReportCommand(container *app.Container) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "report [date|today]",
		Short: "Build the Markdown report for a session day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dateArg := "today"
			if len(args) == 1 {
				dateArg = args[0]
			}

			rendered, err := container.ReportService.Build(dateArg)
			if err != nil {
				return err
			}

			if outputPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), rendered)
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(rendered), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}
