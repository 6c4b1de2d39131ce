package task

import (
	"path/filepath"
)

// Spec is the explicit parameter schema handed to Register. The loader (or a
// test) fills one in per task; the registry validates it once and it becomes
// the single source of truth for the vars resolver.
type Spec struct {
	Name     string
	Body     Body
	Inputs   []string
	Outputs  []string
	Vars     []TaskVar
	RunIf    Predicate
	RunIfNot Predicate
	Touch    string
	Depends  []string
	Doc      string
}

// Registry owns all tasks for a single invocation. It is populated by the
// loader before execution begins and is read-only for the duration of a run.
type Registry struct {
	tasks   map[string]*Task
	order   []string
	owners  map[string]string
	defName string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks:  make(map[string]*Task),
		owners: make(map[string]string),
	}
}

// Register validates the spec and adds the task to the registry. A touch
// path counts as an output and must obey the same single-owner rule.
func (r *Registry) Register(spec Spec) (*Task, error) {
	if spec.Name == "" {
		return nil, regErrorf(spec.Name, "task name must not be empty")
	}
	if _, exists := r.tasks[spec.Name]; exists {
		return nil, regErrorf(spec.Name, "already registered")
	}

	outputs := append([]string(nil), spec.Outputs...)
	if spec.Touch != "" && !containsPath(outputs, spec.Touch) {
		outputs = append(outputs, spec.Touch)
	}

	for _, out := range outputs {
		canon := canonicalPath(out)
		if owner, taken := r.owners[canon]; taken {
			return nil, regErrorf(spec.Name, "output %q is already produced by task %q", out, owner)
		}
	}

	vars, err := normalizeVars(spec.Name, spec.Vars)
	if err != nil {
		return nil, err
	}

	t := &Task{
		Name:     spec.Name,
		Body:     spec.Body,
		Inputs:   append([]string(nil), spec.Inputs...),
		Outputs:  outputs,
		Vars:     vars,
		RunIf:    spec.RunIf,
		RunIfNot: spec.RunIfNot,
		Depends:  append([]string(nil), spec.Depends...),
		Touch:    spec.Touch,
		Doc:      spec.Doc,
	}

	r.tasks[t.Name] = t
	r.order = append(r.order, t.Name)
	for _, out := range outputs {
		r.owners[canonicalPath(out)] = t.Name
	}
	return t, nil
}

// Get returns the task with the given name, or nil.
func (r *Registry) Get(name string) *Task {
	return r.tasks[name]
}

// ByOutput returns the task that owns the given output path, or nil.
func (r *Registry) ByOutput(path string) *Task {
	if name, ok := r.owners[canonicalPath(path)]; ok {
		return r.tasks[name]
	}
	return nil
}

// FindTarget resolves a target string to a task, first by name, then by
// owned output path.
func (r *Registry) FindTarget(target string) (*Task, error) {
	if t := r.Get(target); t != nil {
		return t, nil
	}
	if t := r.ByOutput(target); t != nil {
		return t, nil
	}
	return nil, &UnknownTargetError{Target: target}
}

// AllTasks returns every registered task in registration order.
func (r *Registry) AllTasks() []*Task {
	out := make([]*Task, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tasks[name])
	}
	return out
}

// SetDefault designates the task to run when no target is specified.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.tasks[name]; !ok {
		return &UnknownTargetError{Target: name}
	}
	r.defName = name
	return nil
}

// DefaultTask returns the default task name, or "" if none is set.
func (r *Registry) DefaultTask() string {
	return r.defName
}

// Clear resets the registry to empty. Kept for callers that reuse a registry
// across invocations; constructing a fresh Registry is equivalent.
func (r *Registry) Clear() {
	r.tasks = make(map[string]*Task)
	r.order = nil
	r.owners = make(map[string]string)
	r.defName = ""
}

func normalizeVars(taskName string, vars []TaskVar) ([]TaskVar, error) {
	out := make([]TaskVar, 0, len(vars))
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if v.Name == "" {
			return nil, regErrorf(taskName, "var name must not be empty")
		}
		if _, dup := seen[v.Name]; dup {
			return nil, regErrorf(taskName, "var %q declared twice", v.Name)
		}
		seen[v.Name] = struct{}{}
		if !v.Type.valid() {
			return nil, regErrorf(taskName, "var %q: unsupported type", v.Name)
		}

		def, err := normalizeDefault(taskName, v)
		if err != nil {
			return nil, err
		}
		v.Default = def
		out = append(out, v)
	}
	return out, nil
}

// normalizeDefault coerces a declared default to the var's canonical Go
// representation. An int default is widened for a float var; everything else
// must match exactly.
func normalizeDefault(taskName string, v TaskVar) (any, error) {
	if v.Default == nil {
		if !v.Optional {
			return nil, regErrorf(taskName, "var %q must have a default value or be optional", v.Name)
		}
		return nil, nil
	}

	switch v.Type {
	case TypeString, TypePath:
		if s, ok := v.Default.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch d := v.Default.(type) {
		case int:
			return int64(d), nil
		case int64:
			return d, nil
		}
	case TypeFloat:
		switch d := v.Default.(type) {
		case float64:
			return d, nil
		case int:
			return float64(d), nil
		case int64:
			return float64(d), nil
		}
	case TypeBool:
		if b, ok := v.Default.(bool); ok {
			return b, nil
		}
	}
	return nil, regErrorf(taskName, "var %q: default %v does not match declared type %s", v.Name, v.Default, v.Type)
}

func containsPath(paths []string, p string) bool {
	canon := canonicalPath(p)
	for _, existing := range paths {
		if canonicalPath(existing) == canon {
			return true
		}
	}
	return false
}

// canonicalPath is the key form used for output ownership. Relative paths
// are resolved against the current working directory so that a task declared
// with "out/a.txt" and a target given as "./out/a.txt" meet in the map.
func canonicalPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
