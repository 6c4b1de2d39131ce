package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"gomake/internal/task"
)

// varBlock is one `var "name" { ... }` block inside a task.
type varBlock struct {
	Name     string         `hcl:"name,label"`
	Type     hcl.Expression `hcl:"type"`
	Default  *cty.Value     `hcl:"default,optional"`
	Optional bool           `hcl:"optional,optional"`
	Doc      string         `hcl:"description,optional"`
}

// taskBlock is one `task "name" { ... }` block from a build file. Command
// and the gating attributes stay as expressions; they are evaluated at body
// invocation time, not at load time.
type taskBlock struct {
	Name     string         `hcl:"name,label"`
	Doc      string         `hcl:"doc,optional"`
	Inputs   []string       `hcl:"inputs,optional"`
	Outputs  []string       `hcl:"outputs,optional"`
	Depends  []string       `hcl:"depends,optional"`
	Touch    string         `hcl:"touch,optional"`
	Command  hcl.Expression `hcl:"command,optional"`
	RunIf    hcl.Expression `hcl:"run_if,optional"`
	RunIfNot hcl.Expression `hcl:"run_if_not,optional"`
	Vars     []*varBlock    `hcl:"var,block"`
}

// fileRoot is the top-level structure of a build file.
type fileRoot struct {
	Default string       `hcl:"default,optional"`
	Tasks   []*taskBlock `hcl:"task,block"`
}

// parseVarType maps a var block's type keyword to the registry's closed type
// set. `number` is accepted as an alias for float, matching what HCL authors
// expect from the wider ecosystem.
func parseVarType(expr hcl.Expression) (task.VarType, error) {
	traversal, ok := expr.(*hclsyntax.ScopeTraversalExpr)
	if !ok || len(traversal.Traversal) != 1 {
		return 0, fmt.Errorf("type must be a bare keyword (string, int, float, number, bool, path)")
	}

	switch traversal.Traversal.RootName() {
	case "string":
		return task.TypeString, nil
	case "int":
		return task.TypeInt, nil
	case "float", "number":
		return task.TypeFloat, nil
	case "bool":
		return task.TypeBool, nil
	case "path":
		return task.TypePath, nil
	default:
		return 0, fmt.Errorf("unknown var type %q", traversal.Traversal.RootName())
	}
}

// defaultFromValue converts a literal HCL default into the Go representation
// the registry validates. Int extraction fails loudly on a fractional
// number so the mistake surfaces at load time.
func defaultFromValue(vtype task.VarType, val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	switch vtype {
	case task.TypeString, task.TypePath:
		if val.Type() == cty.String {
			return val.AsString(), nil
		}
	case task.TypeBool:
		if val.Type() == cty.Bool {
			return val.True(), nil
		}
	case task.TypeInt:
		if val.Type() == cty.Number {
			bf := val.AsBigFloat()
			if !bf.IsInt() {
				return nil, fmt.Errorf("default %s is not an integer", bf.Text('g', -1))
			}
			i, _ := bf.Int64()
			return i, nil
		}
	case task.TypeFloat:
		if val.Type() == cty.Number {
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		}
	}
	return nil, fmt.Errorf("default does not match declared type %s", vtype)
}
