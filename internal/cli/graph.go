package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGraphCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "graph [target]",
		Short: "Print the dependency graph in DOT format",
		Long: `Graph writes the target's dependency graph as Graphviz DOT. Tasks are
boxes, files are ellipses. With no target the default task is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}

			target := ""
			if len(args) == 1 {
				target = args[0]
			} else if target = a.Registry().DefaultTask(); target == "" {
				return fmt.Errorf("no target specified and no default task set")
			}

			t, err := a.Registry().FindTarget(target)
			if err != nil {
				return err
			}
			dot, err := a.Resolver().ToDot(t)
			if err != nil {
				return err
			}
			fmt.Fprint(c.outW, dot)
			return nil
		},
	}
}
