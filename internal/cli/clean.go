package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gomake/internal/task"
)

func newCleanCmd(c *cli) *cobra.Command {
	var (
		up   bool
		down bool
		all  bool
		dry  bool
	)

	cmd := &cobra.Command{
		Use:   "clean [target]",
		Short: "Delete the output files a target produces",
		Long: `Clean removes the target's declared output files. --up extends the scope
to everything the target depends on, --down to everything that depends on
the target, and --all cleans every registered task. --dry prints what
would be removed without touching anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}

			var tasks []*task.Task
			switch {
			case all:
				tasks = a.Registry().AllTasks()
			case len(args) == 0:
				return fmt.Errorf("clean needs a target (or --all)")
			default:
				t, err := a.Registry().FindTarget(args[0])
				if err != nil {
					return err
				}
				names := []string{t.Name}
				if up {
					names = a.Resolver().TransitiveDeps(t)
				} else if down {
					names = a.Resolver().TransitiveDependents(t)
				}
				for _, name := range names {
					if ct := a.Registry().Get(name); ct != nil {
						tasks = append(tasks, ct)
					}
				}
			}

			for _, t := range tasks {
				for _, out := range t.Outputs {
					if _, err := os.Stat(out); err != nil {
						continue
					}
					if dry {
						fmt.Fprintf(c.outW, "would remove %s\n", out)
						continue
					}
					if err := os.Remove(out); err != nil {
						return fmt.Errorf("cannot remove %q: %w", out, err)
					}
					fmt.Fprintf(c.outW, "removed %s\n", out)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&up, "up", false, "also clean the target's transitive dependencies")
	cmd.Flags().BoolVar(&down, "down", false, "also clean the target's transitive dependents")
	cmd.Flags().BoolVar(&all, "all", false, "clean every task's outputs")
	cmd.Flags().BoolVar(&dry, "dry", false, "print what would be removed, remove nothing")
	cmd.MarkFlagsMutuallyExclusive("up", "down", "all")
	return cmd
}
