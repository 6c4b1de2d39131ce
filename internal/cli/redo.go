package cli

import (
	"github.com/spf13/cobra"
)

func newRedoCmd(c *cli) *cobra.Command {
	var only bool

	cmd := &cobra.Command{
		Use:   "redo <target>",
		Short: "Force-rerun a target and its dependents",
		Long: `Redo reruns the target regardless of file timestamps, then reruns every
task that transitively depends on it. Dependencies of the target still run
only when stale. With --only the dependents are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			return a.Redo(cmd.Context(), args[0], only)
		},
	}

	cmd.Flags().BoolVar(&only, "only", false, "rerun just the target, not its dependents")
	return cmd
}
