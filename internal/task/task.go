package task

import "context"

// VarType identifies the declared type of a task var. It is a closed set;
// values outside it are rejected at registration.
type VarType int

const (
	TypeString VarType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypePath
)

// String returns the type name used in error messages.
func (t VarType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypePath:
		return "path"
	default:
		return "invalid"
	}
}

func (t VarType) valid() bool {
	return t >= TypeString && t <= TypePath
}

// Body is the callback invoked to perform a task's work. The vars map holds
// the task's resolved parameters, keyed by var name. The engine treats the
// body as opaque.
type Body func(ctx context.Context, vars map[string]any) error

// Predicate is a zero-argument execution gate for run_if / run_if_not.
type Predicate func() bool

// TaskVar is one declared parameter of a task body.
//
// Default is normalized at registration: string for string and path vars,
// int64 for int, float64 for float, bool for bool, or nil for an optional
// var without a default.
type TaskVar struct {
	Name     string
	Type     VarType
	Default  any
	Optional bool
}

// Task is a named unit of declared work.
type Task struct {
	Name     string
	Body     Body
	Inputs   []string
	Outputs  []string
	Vars     []TaskVar
	RunIf    Predicate
	RunIfNot Predicate
	Depends  []string
	Touch    string
	Doc      string
}

// IsPhony reports whether the task declares no outputs. Phony tasks are
// always eligible to run.
func (t *Task) IsPhony() bool {
	return len(t.Outputs) == 0
}

// Var returns the declared var with the given name.
func (t *Task) Var(name string) (TaskVar, bool) {
	for _, v := range t.Vars {
		if v.Name == name {
			return v, true
		}
	}
	return TaskVar{}, false
}
