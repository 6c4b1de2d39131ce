package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gomake/internal/ctxlog"
	"gomake/internal/resolver"
	"gomake/internal/task"
	"gomake/internal/vars"
)

// Options configures an Executor.
type Options struct {
	// Parallel schedules the resolved order as a DAG on a worker pool
	// instead of walking it strictly in sequence.
	Parallel bool
	// Workers bounds the pool in parallel mode; zero means host parallelism.
	Workers int
	// Force runs every task unconditionally, ignoring staleness.
	Force bool
	// Quiet suppresses the per-task console lines.
	Quiet bool
	// Out receives console output; defaults to os.Stdout.
	Out io.Writer
}

// Executor runs tasks from a registry in resolver order.
type Executor struct {
	registry *task.Registry
	resolver *resolver.Resolver
	vars     *vars.Resolver
	opts     Options
}

// New returns an executor over the registry. A nil vars resolver means task
// bodies receive declared defaults only.
func New(reg *task.Registry, vr *vars.Resolver, opts Options) *Executor {
	if vr == nil {
		vr = vars.Empty()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Executor{
		registry: reg,
		resolver: resolver.New(reg),
		vars:     vr,
		opts:     opts,
	}
}

// ShouldRun reports whether t is stale. The policy, in order: force wins,
// phony tasks always run, a missing output forces a run, a task with no
// inputs and all outputs present is up to date, otherwise any existing input
// strictly newer than the oldest output makes the task stale.
func (e *Executor) ShouldRun(t *task.Task, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if t.IsPhony() {
		return true, nil
	}

	var oldest time.Time
	for i, out := range t.Outputs {
		info, err := os.Stat(out)
		if err != nil {
			if os.IsNotExist(err) {
				return true, nil
			}
			return false, fmt.Errorf("stat output %q: %w", out, err)
		}
		if i == 0 || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}

	if len(t.Inputs) == 0 {
		return false, nil
	}
	for _, in := range t.Inputs {
		info, err := os.Stat(in)
		if err != nil {
			continue
		}
		if info.ModTime().After(oldest) {
			return true, nil
		}
	}
	return false, nil
}

// ExecuteTask runs a single task if its gates and staleness allow it,
// reporting whether the body actually ran. run_if and run_if_not skip
// unconditionally; force does not override them.
func (e *Executor) ExecuteTask(ctx context.Context, t *task.Task, force bool) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("task", t.Name)

	if t.RunIf != nil && !t.RunIf() {
		logger.Debug("Skipping task, run_if returned false.")
		return false, nil
	}
	if t.RunIfNot != nil && t.RunIfNot() {
		logger.Debug("Skipping task, run_if_not returned true.")
		return false, nil
	}

	run, err := e.ShouldRun(t, force)
	if err != nil {
		return false, err
	}
	if !run {
		logger.Debug("Task is up to date.")
		return false, nil
	}

	kwargs, err := e.vars.Resolve(t)
	if err != nil {
		return false, err
	}

	if !e.opts.Quiet {
		fmt.Fprintf(e.opts.Out, "[run] %s\n", t.Name)
	}
	logger.Debug("Running task body.", "forced", force)

	if t.Body != nil {
		if err := t.Body(ctx, kwargs); err != nil {
			return false, &ExecutionError{Task: t.Name, Err: err}
		}
	}

	if t.Touch != "" {
		if err := touchFile(t.Touch); err != nil {
			return true, &ExecutionError{Task: t.Name, Err: err}
		}
	}
	logger.Debug("Task finished.")
	return true, nil
}

// Run resolves the target (by name or owned output path), executes eligible
// tasks in dependency order, and reports whether at least one body ran.
func (e *Executor) Run(ctx context.Context, target string) (bool, error) {
	t, err := e.registry.FindTarget(target)
	if err != nil {
		return false, err
	}
	order, err := e.resolver.Resolve(t)
	if err != nil {
		return false, err
	}

	if e.opts.Parallel {
		return e.runParallel(ctx, order, nil)
	}
	return e.runSequential(ctx, order, nil)
}

// runSequential walks the order strictly in sequence. Each task's staleness
// and gating are evaluated against live filesystem state immediately before
// it would run. Tasks named in forced run unconditionally.
func (e *Executor) runSequential(ctx context.Context, order []*task.Task, forced map[string]bool) (bool, error) {
	anyRan := false
	for _, t := range order {
		if err := ctx.Err(); err != nil {
			return anyRan, err
		}
		ran, err := e.ExecuteTask(ctx, t, e.opts.Force || forced[t.Name])
		if err != nil {
			return anyRan, err
		}
		if ran {
			anyRan = true
		}
	}
	return anyRan, nil
}

// touchFile creates the path if missing and bumps its mtime to now.
func touchFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}
