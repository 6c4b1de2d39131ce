package cli

import (
	"github.com/spf13/cobra"
)

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run targets and everything they depend on",
		Long: `Run resolves each target's dependency graph and executes the stale tasks
in dependency order. A target is a task name or one of its output paths.
With no targets the build file's default task runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			return a.RunTargets(cmd.Context(), args)
		},
	}
}
