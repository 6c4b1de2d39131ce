package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gomake/internal/task"
)

func newListCmd(c *cli) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tasks",
		Long: `List prints every task with its doc string. The default task comes
first and is marked. Namespaced tasks (names containing ":" or "/") are
hidden unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}

			reg := a.Registry()
			defName := reg.DefaultTask()

			tasks := reg.AllTasks()
			ordered := make([]*task.Task, 0, len(tasks))
			for _, t := range tasks {
				if t.Name == defName {
					ordered = append([]*task.Task{t}, ordered...)
					continue
				}
				if !all && (strings.ContainsAny(t.Name, ":/")) {
					continue
				}
				ordered = append(ordered, t)
			}

			width := 0
			for _, t := range ordered {
				if len(t.Name) > width {
					width = len(t.Name)
				}
			}
			for _, t := range ordered {
				marker := " "
				if t.Name == defName {
					marker = markerStyle.Render("*")
				}
				line := fmt.Sprintf("%s %-*s", marker, width, t.Name)
				if t.Doc != "" {
					line += "  " + docStyle.Render(t.Doc)
				}
				fmt.Fprintln(c.outW, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include namespaced tasks")
	return cmd
}
