package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gomake/internal/doctor"
	"gomake/internal/task"
)

func newDoctorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [target]",
		Short: "Check the task graph for problems without running anything",
		Long: `Doctor reports dependency cycles, inputs no task produces, and problems
with the configured variable values. With a target only that target's
graph is checked; otherwise every registered task is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}

			var target *task.Task
			if len(args) == 1 {
				if target, err = a.Registry().FindTarget(args[0]); err != nil {
					return err
				}
			}

			doc := doctor.New(a.Registry())
			issues := append(doc.CheckAll(target), doc.CheckVars(a.VarsResolver())...)

			errorCount := 0
			for _, issue := range issues {
				if issue.Severity == doctor.SeverityError {
					errorCount++
				}
				fmt.Fprintln(c.outW, issue)
			}
			if errorCount > 0 {
				return fmt.Errorf("%d error(s) found", errorCount)
			}
			if len(issues) == 0 {
				fmt.Fprintln(c.outW, "No problems found.")
			}
			return nil
		},
	}
}
