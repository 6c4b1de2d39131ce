package loader

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"gomake/internal/task"
)

// envFunc exposes env("NAME") to build-file expressions, returning "" for an
// unset variable.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

// baseEvalContext is the scope available to gating expressions, which run
// before vars are resolved.
func baseEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// commandEvalContext is the scope a command expression is evaluated in:
// the task's inputs and outputs as string lists and its resolved vars under
// var.*, plus the base functions.
func commandEvalContext(t *task.Task, kwargs map[string]any) (*hcl.EvalContext, error) {
	ctx := baseEvalContext()

	varVals := make(map[string]cty.Value, len(t.Vars))
	for _, v := range t.Vars {
		val, err := ctyFromResolved(v, kwargs[v.Name])
		if err != nil {
			return nil, err
		}
		varVals[v.Name] = val
	}

	ctx.Variables = map[string]cty.Value{
		"inputs":  stringList(t.Inputs),
		"outputs": stringList(t.Outputs),
		"var":     cty.ObjectVal(varVals),
	}
	return ctx, nil
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(items))
	for _, item := range items {
		vals = append(vals, cty.StringVal(item))
	}
	return cty.ListVal(vals)
}

// ctyFromResolved lifts a resolved var value back into cty for expression
// evaluation. A nil optional var becomes a typed null.
func ctyFromResolved(v task.TaskVar, value any) (cty.Value, error) {
	if value == nil {
		return cty.NullVal(ctyType(v.Type)), nil
	}
	switch val := value.(type) {
	case string:
		return cty.StringVal(val), nil
	case int64:
		return cty.NumberIntVal(val), nil
	case float64:
		return cty.NumberFloatVal(val), nil
	case bool:
		return cty.BoolVal(val), nil
	}
	return cty.NilVal, fmt.Errorf("var %q: unsupported resolved value %T", v.Name, value)
}

func ctyType(t task.VarType) cty.Type {
	switch t {
	case task.TypeBool:
		return cty.Bool
	case task.TypeInt, task.TypeFloat:
		return cty.Number
	default:
		return cty.String
	}
}
