// Package doctor runs static pre-flight checks over a task graph: cycles and
// input paths that can never be satisfied.
package doctor

import (
	"errors"
	"fmt"
	"os"

	"gomake/internal/resolver"
	"gomake/internal/task"
	"gomake/internal/vars"
)

// Severity classifies an issue. Errors abort execution; warnings are
// reported only.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found during static analysis.
type Issue struct {
	Severity Severity
	Task     string
	Message  string
}

// String renders the issue in the console report form.
func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Task, i.Message)
}

// Doctor is a thin consumer of the resolver.
type Doctor struct {
	registry *task.Registry
	resolver *resolver.Resolver
}

// New returns a doctor over the registry.
func New(reg *task.Registry) *Doctor {
	return &Doctor{registry: reg, resolver: resolver.New(reg)}
}

// CheckAll collects issues for the tasks reachable from target, or for every
// registered task when target is nil.
func (d *Doctor) CheckAll(target *task.Task) []Issue {
	var issues []Issue
	var tasks []*task.Task

	if target != nil {
		order, err := d.resolver.Resolve(target)
		if err != nil {
			return []Issue{{Severity: SeverityError, Task: target.Name, Message: err.Error()}}
		}
		tasks = order
	} else {
		tasks = d.registry.AllTasks()
		issues = append(issues, d.checkCycles(tasks)...)
	}

	issues = append(issues, d.checkUnproducibleInputs(tasks)...)
	return issues
}

// CheckVars validates the vars sources against the registry. Unknown
// vars-file sections become warnings; an unknown task in a --vars entry is
// an error.
func (d *Doctor) CheckVars(vr *vars.Resolver) []Issue {
	if vr == nil {
		return nil
	}
	warnings, err := vr.ValidateTasks(d.registry.AllTasks())

	var issues []Issue
	for _, w := range warnings {
		issues = append(issues, Issue{Severity: SeverityWarning, Task: "vars", Message: w})
	}
	if err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Task: "vars", Message: err.Error()})
	}
	return issues
}

func (d *Doctor) checkCycles(tasks []*task.Task) []Issue {
	var issues []Issue
	checked := make(map[string]struct{})

	for _, t := range tasks {
		if _, ok := checked[t.Name]; ok {
			continue
		}
		order, err := d.resolver.Resolve(t)
		if err != nil {
			var cyc *resolver.CyclicDependencyError
			if errors.As(err, &cyc) {
				issues = append(issues, Issue{Severity: SeverityError, Task: t.Name, Message: err.Error()})
			}
			checked[t.Name] = struct{}{}
			continue
		}
		for _, resolved := range order {
			checked[resolved.Name] = struct{}{}
		}
	}
	return issues
}

// checkUnproducibleInputs flags inputs that neither exist on disk nor are
// owned by any registered task; such a dependency can never be satisfied.
func (d *Doctor) checkUnproducibleInputs(tasks []*task.Task) []Issue {
	var issues []Issue
	seen := make(map[[2]string]struct{})

	for _, t := range tasks {
		for _, input := range t.Inputs {
			key := [2]string{t.Name, input}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			if _, err := os.Stat(input); err == nil {
				continue
			}
			if d.registry.ByOutput(input) != nil {
				continue
			}
			issues = append(issues, Issue{
				Severity: SeverityError,
				Task:     t.Name,
				Message:  fmt.Sprintf("input %q does not exist and no task produces it", input),
			})
		}
	}
	return issues
}
