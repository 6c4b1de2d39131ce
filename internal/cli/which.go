package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gomake/internal/app"
	"gomake/internal/executor"
	"gomake/internal/task"
)

func newWhichCmd(c *cli) *cobra.Command {
	var dependents bool

	cmd := &cobra.Command{
		Use:   "which <target>",
		Short: "Show a target's dependency tree and what is stale",
		Long: `Which renders the target's dependency tree, one task per line, with its
input and output files underneath. Stale tasks (ones a run would execute)
are marked with (*). With --dependents the tree points the other way and
shows the tasks that would be re-run after the target changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Registry().FindTarget(args[0])
			if err != nil {
				return err
			}

			w := &treeWriter{
				cli:        c,
				app:        a,
				exec:       a.Executor(),
				dependents: dependents,
				seen:       map[string]bool{},
			}
			return w.print(t, 0)
		},
	}

	cmd.Flags().BoolVarP(&dependents, "dependents", "d", false, "walk dependents instead of dependencies")
	return cmd
}

type treeWriter struct {
	cli        *cli
	app        *app.App
	exec       *executor.Executor
	dependents bool
	seen       map[string]bool
}

func (w *treeWriter) print(t *task.Task, depth int) error {
	indent := strings.Repeat("  ", depth)

	line := indent + taskStyle.Render(t.Name)
	stale, err := w.exec.ShouldRun(t, false)
	if err != nil {
		return err
	}
	if stale {
		line += " " + staleStyle.Render("(*)")
	}
	if w.seen[t.Name] {
		fmt.Fprintln(w.cli.outW, line+" "+docStyle.Render("(shown above)"))
		return nil
	}
	w.seen[t.Name] = true
	fmt.Fprintln(w.cli.outW, line)

	for _, in := range t.Inputs {
		fmt.Fprintln(w.cli.outW, indent+fileStyle.Render("  <- "+in))
	}
	for _, out := range t.Outputs {
		fmt.Fprintln(w.cli.outW, indent+fileStyle.Render("  -> "+out))
	}

	var children []*task.Task
	if w.dependents {
		children = w.app.Resolver().Dependents(t)
	} else {
		children, err = w.app.Resolver().Dependencies(t)
		if err != nil {
			return err
		}
	}
	for _, child := range children {
		if err := w.print(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
