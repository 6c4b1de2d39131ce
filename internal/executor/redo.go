package executor

import (
	"context"

	"gomake/internal/task"
)

// RedoOnly runs the target's dependencies under normal staleness rules, then
// force-runs the target itself, leaving its dependents untouched. It reports
// whether the target's body ran (it may still be skipped by a run_if gate).
func (e *Executor) RedoOnly(ctx context.Context, target string) (bool, error) {
	t, err := e.registry.FindTarget(target)
	if err != nil {
		return false, err
	}
	order, err := e.resolver.Resolve(t)
	if err != nil {
		return false, err
	}

	for _, dep := range order {
		if dep.Name == t.Name {
			continue
		}
		if _, err := e.ExecuteTask(ctx, dep, e.opts.Force); err != nil {
			return false, err
		}
	}
	return e.ExecuteTask(ctx, t, true)
}

// RedoWithDependents force-runs the target and everything that transitively
// depends on it. The execution list is the target's resolved order followed
// by the remaining transitive dependents in first-seen order; tasks in the
// transitive-dependents set are forced, the rest run under normal staleness
// evaluation. Upstream dependencies of unrelated branches are never touched.
func (e *Executor) RedoWithDependents(ctx context.Context, target string) (bool, error) {
	t, err := e.registry.FindTarget(target)
	if err != nil {
		return false, err
	}

	dependents := e.resolver.TransitiveDependents(t)
	forced := make(map[string]bool, len(dependents))
	for _, name := range dependents {
		forced[name] = true
	}

	order, err := e.resolver.Resolve(t)
	if err != nil {
		return false, err
	}
	list := make([]*task.Task, 0, len(order)+len(dependents))
	seen := make(map[string]struct{}, len(order))
	for _, cur := range order {
		list = append(list, cur)
		seen[cur.Name] = struct{}{}
	}
	for _, name := range dependents {
		if _, ok := seen[name]; ok {
			continue
		}
		if dt := e.registry.Get(name); dt != nil {
			list = append(list, dt)
			seen[name] = struct{}{}
		}
	}

	return e.runSequential(ctx, list, forced)
}
