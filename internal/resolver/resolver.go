package resolver

import (
	"fmt"
	"strings"

	"gomake/internal/task"
)

// Resolver answers dependency queries for a registry. It is stateless;
// every query walks the live registry, so re-resolving after registration
// changes always reflects the current graph.
type Resolver struct {
	registry *task.Registry
}

// New returns a resolver over the given registry.
func New(reg *task.Registry) *Resolver {
	return &Resolver{registry: reg}
}

// CyclicDependencyError reports a dependency cycle. Cycle holds the task
// names along the cycle, starting and ending at the repeated task.
type CyclicDependencyError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Cycle, " -> "))
}

// Dependencies returns the immediate dependencies of a task in declaration
// order: explicit depends entries first, then tasks owning the task's input
// paths, deduplicated. A depends entry naming an unregistered task is an
// error; an input path nobody owns is not (the doctor flags it if the file
// is also missing).
func (r *Resolver) Dependencies(t *task.Task) ([]*task.Task, error) {
	var deps []*task.Task
	seen := make(map[string]struct{})

	add := func(dep *task.Task) {
		if dep.Name == t.Name {
			return
		}
		if _, ok := seen[dep.Name]; ok {
			return
		}
		seen[dep.Name] = struct{}{}
		deps = append(deps, dep)
	}

	for _, name := range t.Depends {
		dep := r.registry.Get(name)
		if dep == nil {
			return nil, fmt.Errorf("task %q depends on unknown task %q", t.Name, name)
		}
		add(dep)
	}
	for _, in := range t.Inputs {
		if owner := r.registry.ByOutput(in); owner != nil {
			add(owner)
		}
	}
	return deps, nil
}

// Resolve computes a topological order containing t and every transitive
// dependency, each dependency strictly before any task that depends on it.
// The traversal is a deterministic depth-first post-order walk, so the same
// graph always yields the same sequence.
func (r *Resolver) Resolve(t *task.Task) ([]*task.Task, error) {
	var order []*task.Task
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(cur *task.Task) error
	visit = func(cur *task.Task) error {
		if onStack[cur.Name] {
			return &CyclicDependencyError{Cycle: cyclePath(stack, cur.Name)}
		}
		if visited[cur.Name] {
			return nil
		}

		onStack[cur.Name] = true
		stack = append(stack, cur.Name)

		deps, err := r.Dependencies(cur)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, cur.Name)
		visited[cur.Name] = true
		order = append(order, cur)
		return nil
	}

	if err := visit(t); err != nil {
		return nil, err
	}
	return order, nil
}

// cyclePath trims the recursion stack to the segment forming the cycle and
// closes it with the repeated name, e.g. [a b c a].
func cyclePath(stack []string, repeated string) []string {
	start := 0
	for i, name := range stack {
		if name == repeated {
			start = i
			break
		}
	}
	cycle := append([]string(nil), stack[start:]...)
	return append(cycle, repeated)
}

// Dependents returns the tasks whose depends entries or input paths
// reference t directly, in registration order.
func (r *Resolver) Dependents(t *task.Task) []*task.Task {
	var out []*task.Task
	for _, candidate := range r.registry.AllTasks() {
		if candidate.Name == t.Name {
			continue
		}
		if r.dependsOn(candidate, t) {
			out = append(out, candidate)
		}
	}
	return out
}

func (r *Resolver) dependsOn(candidate, t *task.Task) bool {
	for _, name := range candidate.Depends {
		if name == t.Name {
			return true
		}
	}
	for _, in := range candidate.Inputs {
		if owner := r.registry.ByOutput(in); owner != nil && owner.Name == t.Name {
			return true
		}
	}
	return false
}

// TransitiveDependents returns the names of every task reachable from t by
// following the reverse edge relation to a fixed point. The result includes
// t itself and is ordered by first visit (breadth-first), which puts every
// dependency before its dependents within the returned slice.
func (r *Resolver) TransitiveDependents(t *task.Task) []string {
	seen := map[string]struct{}{t.Name: {}}
	names := []string{t.Name}
	queue := []*task.Task{t}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range r.Dependents(cur) {
			if _, ok := seen[dep.Name]; ok {
				continue
			}
			seen[dep.Name] = struct{}{}
			names = append(names, dep.Name)
			queue = append(queue, dep)
		}
	}
	return names
}

// TransitiveDeps returns the names of every task transitively required by t,
// including t itself, ordered by first visit.
func (r *Resolver) TransitiveDeps(t *task.Task) []string {
	seen := map[string]struct{}{t.Name: {}}
	names := []string{t.Name}
	queue := []*task.Task{t}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		deps, err := r.Dependencies(cur)
		if err != nil {
			continue
		}
		for _, dep := range deps {
			if _, ok := seen[dep.Name]; ok {
				continue
			}
			seen[dep.Name] = struct{}{}
			names = append(names, dep.Name)
			queue = append(queue, dep)
		}
	}
	return names
}
