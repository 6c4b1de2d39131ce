package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"gomake/internal/ctxlog"
	"gomake/internal/fsutil"
	"gomake/internal/shell"
	"gomake/internal/task"
)

// DefaultFile is the build file name looked for when none is given.
const DefaultFile = "build.hcl"

// Load populates the registry from a build file, or from every .hcl file
// under a directory (merged in sorted path order).
func Load(ctx context.Context, path string, reg *task.Registry) error {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("build file %s not found", path)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no .hcl build files found under %s", path)
		}
	}
	logger.Debug("Loading build files.", "count", len(files))

	parser := hclparse.NewParser()
	var defaultTask string

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return fmt.Errorf("parse %s: %s", file, diags.Error())
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return fmt.Errorf("decode %s: %s", file, diags.Error())
		}

		for _, tb := range root.Tasks {
			if err := registerTask(ctx, reg, tb); err != nil {
				return fmt.Errorf("loading %s: %w", file, err)
			}
			logger.Debug("Registered task.", "task", tb.Name)
		}
		if root.Default != "" {
			defaultTask = root.Default
		}
	}

	if defaultTask != "" {
		if err := reg.SetDefault(defaultTask); err != nil {
			return fmt.Errorf("default task: %w", err)
		}
	}
	return nil
}

func registerTask(ctx context.Context, reg *task.Registry, tb *taskBlock) error {
	vars := make([]task.TaskVar, 0, len(tb.Vars))
	for _, vb := range tb.Vars {
		vtype, err := parseVarType(vb.Type)
		if err != nil {
			return fmt.Errorf("task %q var %q: %w", tb.Name, vb.Name, err)
		}
		var def any
		if vb.Default != nil {
			def, err = defaultFromValue(vtype, *vb.Default)
			if err != nil {
				return fmt.Errorf("task %q var %q: %w", tb.Name, vb.Name, err)
			}
		}
		vars = append(vars, task.TaskVar{
			Name:     vb.Name,
			Type:     vtype,
			Default:  def,
			Optional: vb.Optional,
		})
	}

	_, err := reg.Register(task.Spec{
		Name:     tb.Name,
		Body:     commandBody(tb),
		Inputs:   tb.Inputs,
		Outputs:  tb.Outputs,
		Vars:     vars,
		RunIf:    predicate(ctx, tb, tb.RunIf, false),
		RunIfNot: predicate(ctx, tb, tb.RunIfNot, true),
		Touch:    tb.Touch,
		Depends:  tb.Depends,
		Doc:      tb.Doc,
	})
	return err
}

// commandBody wraps a task block's command expression into a Body. A block
// without a command is a meta task; its body is a no-op and only its
// dependencies matter.
func commandBody(tb *taskBlock) task.Body {
	if tb.Command == nil {
		return nil
	}
	return func(ctx context.Context, kwargs map[string]any) error {
		t := taskShape(tb)
		evalCtx, err := commandEvalContext(t, kwargs)
		if err != nil {
			return err
		}
		val, diags := tb.Command.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("command: %s", diags.Error())
		}
		if val.Type() != cty.String || val.IsNull() {
			return fmt.Errorf("command must evaluate to a string")
		}
		return shell.Run(ctx, val.AsString())
	}
}

// taskShape rebuilds the registered task view a command needs for its eval
// scope. The touch path counts as an output here, same as in the registry.
func taskShape(tb *taskBlock) *task.Task {
	outputs := tb.Outputs
	if tb.Touch != "" {
		outputs = append(append([]string(nil), tb.Outputs...), tb.Touch)
	}
	vars := make([]task.TaskVar, 0, len(tb.Vars))
	for _, vb := range tb.Vars {
		vtype, err := parseVarType(vb.Type)
		if err != nil {
			continue
		}
		vars = append(vars, task.TaskVar{Name: vb.Name, Type: vtype})
	}
	return &task.Task{
		Name:    tb.Name,
		Inputs:  tb.Inputs,
		Outputs: outputs,
		Vars:    vars,
	}
}

// predicate wraps a gating expression into a zero-argument callback,
// re-evaluated on every call so env-dependent conditions stay live. An
// expression that fails to evaluate or is not a bool yields onError, chosen
// by the caller so a broken gate always skips the task.
func predicate(ctx context.Context, tb *taskBlock, expr hcl.Expression, onError bool) task.Predicate {
	if expr == nil {
		return nil
	}
	logger := ctxlog.FromContext(ctx).With("task", tb.Name)
	return func() bool {
		val, diags := expr.Value(baseEvalContext())
		if diags.HasErrors() {
			logger.Warn("Gating expression failed to evaluate.", "error", diags.Error())
			return onError
		}
		if val.Type() != cty.Bool || val.IsNull() {
			logger.Warn("Gating expression did not produce a bool.", "type", val.Type().FriendlyName())
			return onError
		}
		return val.True()
	}
}
