package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kaalsec/kaalsec/internal/app"
	"github.com/kaalsec/kaalsec/internal/infrastructure/tools"
)

func newToolsCommand(container *app.Container) *cobra.Command {
	var (
		category      string
		installedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List known security tools and whether they are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			categories := tools.CategoryNames()
			sort.Strings(categories)

			if category != "" {
				if _, ok := tools.Categories[category]; !ok {
					return fmt.Errorf("unknown category %q, known: %v", category, categories)
				}
				categories = []string{category}
			}

			for _, name := range categories {
				members := append([]string(nil), tools.Categories[name]...)
				sort.Strings(members)

				fmt.Fprintf(out, "%s:\n", name)
				for _, tool := range members {
					installed := container.Discovery.IsInstalled(tool)
					if installedOnly && !installed {
						continue
					}
					mark := " "
					if installed {
						mark = "*"
					}
					fmt.Fprintf(out, "  [%s] %s\n", mark, tool)
				}
			}
			fmt.Fprintln(out, "\n[*] installed and on PATH")
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Limit to one category")
	cmd.Flags().BoolVar(&installedOnly, "installed", false, "Show only installed tools")
	return cmd
}
