package vars

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"gomake/internal/task"
)

// coerceString converts a raw override string to the var's declared type.
// Numerics go through strconv, bools accept only the literals "true" and
// "false" case-insensitively, strings and paths pass through.
func coerceString(taskName string, v task.TaskVar, raw string) (any, error) {
	switch v.Type {
	case task.TypeString, task.TypePath:
		return raw, nil
	case task.TypeInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, stringTypeError(taskName, v, raw)
		}
		return i, nil
	case task.TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, stringTypeError(taskName, v, raw)
		}
		return f, nil
	case task.TypeBool:
		switch strings.ToLower(raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, stringTypeError(taskName, v, raw)
	}
	return nil, fmt.Errorf("task %q: unsupported var type for %q", taskName, v.Name)
}

// coerceValue validates an already-typed value (from the vars file or a bulk
// override) against the var's declared type. The only implicit conversion is
// numeric widening: an integer supplied for a float var.
func coerceValue(taskName string, v task.TaskVar, val cty.Value) (any, error) {
	if val.IsNull() {
		if v.Optional {
			return nil, nil
		}
		return nil, valueTypeError(taskName, v, val)
	}

	switch v.Type {
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
				return nil, valueTypeError(taskName, v, val)
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
	return nil, valueTypeError(taskName, v, val)
}

func stringTypeError(taskName string, v task.TaskVar, raw string) error {
	return fmt.Errorf("task %q var %q: expected %s, got %q", taskName, v.Name, v.Type, raw)
}

func valueTypeError(taskName string, v task.TaskVar, val cty.Value) error {
	return fmt.Errorf("task %q var %q: expected %s, got %s (%s)",
		taskName, v.Name, v.Type, val.Type().FriendlyName(), renderValue(val))
}

func renderValue(val cty.Value) string {
	if val.IsNull() {
		return "null"
	}
	switch val.Type() {
	case cty.String:
		return strconv.Quote(val.AsString())
	case cty.Bool:
		return strconv.FormatBool(val.True())
	case cty.Number:
		return val.AsBigFloat().Text('g', -1)
	}
	return val.Type().FriendlyName()
}
