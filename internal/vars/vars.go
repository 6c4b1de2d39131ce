package vars

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"gomake/internal/task"
)

// Resolver computes the final keyword-argument mapping for task bodies.
// Sources layer in increasing precedence: declared defaults, the vars file,
// then --vars overrides in the order they were given (later entries win).
type Resolver struct {
	fileValues map[string]map[string]cty.Value
	fileOrder  []string
	overrides  []override
}

// New parses the vars file (if any) and every --vars entry eagerly, so
// malformed input surfaces before any task body is invoked.
func New(varsFile string, entries []string) (*Resolver, error) {
	r := &Resolver{fileValues: make(map[string]map[string]cty.Value)}

	if varsFile != "" {
		values, order, err := loadVarsFile(varsFile)
		if err != nil {
			return nil, err
		}
		r.fileValues = values
		r.fileOrder = order
	}
	for _, entry := range entries {
		o, err := parseOverride(entry)
		if err != nil {
			return nil, err
		}
		r.overrides = append(r.overrides, o)
	}
	return r, nil
}

// Empty returns a resolver with no sources; Resolve then yields declared
// defaults only.
func Empty() *Resolver {
	return &Resolver{fileValues: make(map[string]map[string]cty.Value)}
}

// ValidateTasks checks every source against the known task names. An
// unknown task in a --vars entry is a hard error (likely a typo); an unknown
// vars-file section only produces a warning, since vars files are often
// shared across projects.
func (r *Resolver) ValidateTasks(tasks []*task.Task) ([]string, error) {
	known := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		known[t.Name] = struct{}{}
	}

	var warnings []string
	for _, name := range r.fileOrder {
		if _, ok := known[name]; !ok {
			warnings = append(warnings, fmt.Sprintf("vars file has unknown task section %q", name))
		}
	}
	for _, o := range r.overrides {
		if _, ok := known[o.taskName]; !ok {
			return warnings, fmt.Errorf("--vars entry %q references unknown task %q", o.original, o.taskName)
		}
	}
	return warnings, nil
}

// Resolve returns the name-to-value mapping for t's declared vars.
func (r *Resolver) Resolve(t *task.Task) (map[string]any, error) {
	resolved := make(map[string]any, len(t.Vars))
	for _, v := range t.Vars {
		resolved[v.Name] = v.Default
	}

	if section, ok := r.fileValues[t.Name]; ok {
		if err := r.applyMapping(t, resolved, section); err != nil {
			return nil, err
		}
	}

	for _, o := range r.overrides {
		if o.taskName != t.Name {
			continue
		}
		if o.varName == "" {
			if err := r.applyMapping(t, resolved, o.object); err != nil {
				return nil, err
			}
			continue
		}

		v, ok := t.Var(o.varName)
		if !ok {
			return nil, unknownVarError(t.Name, o.varName)
		}
		val, err := coerceString(t.Name, v, o.raw)
		if err != nil {
			return nil, err
		}
		resolved[v.Name] = val
	}
	return resolved, nil
}

func (r *Resolver) applyMapping(t *task.Task, resolved map[string]any, values map[string]cty.Value) error {
	for _, name := range sortedKeys(values) {
		v, ok := t.Var(name)
		if !ok {
			return unknownVarError(t.Name, name)
		}
		val, err := coerceValue(t.Name, v, values[name])
		if err != nil {
			return err
		}
		resolved[v.Name] = val
	}
	return nil
}

func unknownVarError(taskName, varName string) error {
	return fmt.Errorf("task %q: unknown var %q", taskName, varName)
}
