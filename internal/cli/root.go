package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"gomake/internal/app"
)

// cli carries the raw flag values and the output writer shared by every
// subcommand. The app is built after flag parsing, once per command run.
type cli struct {
	outW io.Writer
	cfg  app.Config
}

// buildApp validates the flag values and wires up the engine.
func (c *cli) buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := app.NewConfig(c.cfg)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, c.outW, cfg)
}

// Execute parses args and runs the matching command, writing command output
// to outW. Errors are returned, not printed; the caller owns the exit path.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	root := newRootCmd(outW)
	root.SetArgs(args)
	root.SetOut(outW)
	return root.ExecuteContext(ctx)
}

func newRootCmd(outW io.Writer) *cobra.Command {
	c := &cli{outW: outW}

	root := &cobra.Command{
		Use:   "gomake [targets...]",
		Short: "A programmable build orchestrator",
		Long: `gomake runs tasks declared in an HCL build file. Tasks name their input
and output files; gomake resolves the dependency graph, skips anything
already up to date, and runs the rest in dependency order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Bare targets on the root command run like `gomake run <target>`.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			return a.RunTargets(cmd.Context(), args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.cfg.File, "file", "f", "", "build file or directory of .hcl files (default \"build.hcl\")")
	pf.StringVarP(&c.cfg.Directory, "directory", "C", "", "change to this directory before doing anything")
	pf.BoolVarP(&c.cfg.Parallel, "parallel", "p", false, "run independent tasks concurrently")
	pf.IntVarP(&c.cfg.Jobs, "jobs", "j", 0, "worker count for parallel runs (implies --parallel)")
	pf.BoolVarP(&c.cfg.Force, "force", "B", false, "run tasks even when their outputs are up to date")
	pf.BoolVarP(&c.cfg.Quiet, "quiet", "q", false, "suppress per-task progress output")
	pf.StringVar(&c.cfg.VarsFile, "vars-file", "", "HCL file with per-task variable values")
	pf.StringArrayVar(&c.cfg.Vars, "vars", nil, "variable override, task.var=value or task={json} (repeatable)")
	pf.StringVar(&c.cfg.LogLevel, "log-level", "", "log level: debug, info, warn, error (default \"warn\")")
	pf.StringVar(&c.cfg.LogFormat, "log-format", "", "log format: text or json (default \"text\")")

	root.AddCommand(
		newRunCmd(c),
		newListCmd(c),
		newGraphCmd(c),
		newWhichCmd(c),
		newRedoCmd(c),
		newCleanCmd(c),
		newDoctorCmd(c),
	)
	return root
}
