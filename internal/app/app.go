// Package app ties the pieces together for one invocation: logger, build
// file loading, vars, the doctor pre-flight gate, and the executor.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gomake/internal/ctxlog"
	"gomake/internal/doctor"
	"gomake/internal/executor"
	"gomake/internal/loader"
	"gomake/internal/resolver"
	"gomake/internal/task"
	"gomake/internal/vars"
)

// App is the whole engine wired up for a single invocation. Construct a
// fresh one per run; there is no shared state between instances.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *task.Registry
	vars     *vars.Resolver
}

// New builds an App: it configures the logger, loads the build file into a
// fresh registry, and parses the vars sources eagerly.
func New(ctx context.Context, outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	if cfg.Directory != "" {
		if err := os.Chdir(cfg.Directory); err != nil {
			return nil, fmt.Errorf("cannot change to directory %q: %w", cfg.Directory, err)
		}
	}

	reg := task.NewRegistry()
	if err := loader.Load(ctx, cfg.File, reg); err != nil {
		return nil, err
	}
	logger.Debug("Build file loaded.", "tasks", len(reg.AllTasks()))

	vr, err := vars.New(cfg.VarsFile, cfg.Vars)
	if err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		vars:     vr,
	}, nil
}

// Context returns ctx with the app's logger attached.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Registry returns the populated task registry.
func (a *App) Registry() *task.Registry {
	return a.registry
}

// Resolver returns a resolver over the app's registry.
func (a *App) Resolver() *resolver.Resolver {
	return resolver.New(a.registry)
}

// VarsResolver returns the parsed vars sources.
func (a *App) VarsResolver() *vars.Resolver {
	return a.vars
}

// Executor builds an executor from the app's configuration.
func (a *App) Executor() *executor.Executor {
	return executor.New(a.registry, a.vars, executor.Options{
		Parallel: a.config.Parallel || a.config.Jobs > 0,
		Workers:  a.config.Jobs,
		Force:    a.config.Force,
		Quiet:    a.config.Quiet,
		Out:      a.outW,
	})
}

// Preflight runs the doctor gate for a target plus the vars validation.
// Warnings are printed; any error-severity issue aborts before a single
// task body can run.
func (a *App) Preflight(target *task.Task) error {
	doc := doctor.New(a.registry)
	issues := append(doc.CheckAll(target), doc.CheckVars(a.vars)...)

	errorCount := 0
	for _, issue := range issues {
		if issue.Severity == doctor.SeverityError {
			errorCount++
		}
		fmt.Fprintf(a.outW, "%s\n", issue)
	}
	if errorCount > 0 {
		return fmt.Errorf("%d error(s) found, not running", errorCount)
	}
	return nil
}

// RunTargets runs each target in turn behind its pre-flight gate. With no
// targets it falls back to the registry's default task.
func (a *App) RunTargets(ctx context.Context, targets []string) error {
	ctx = a.Context(ctx)

	if len(targets) == 0 {
		def := a.registry.DefaultTask()
		if def == "" {
			return fmt.Errorf("no targets specified and no default task set")
		}
		targets = []string{def}
	}

	// Gate every target before running anything.
	for _, target := range targets {
		t, err := a.registry.FindTarget(target)
		if err != nil {
			return err
		}
		if err := a.Preflight(t); err != nil {
			return err
		}
	}

	exec := a.Executor()
	anyRan := false
	for _, target := range targets {
		ran, err := exec.Run(ctx, target)
		if err != nil {
			return err
		}
		if ran {
			anyRan = true
		}
	}
	if !anyRan && !a.config.Quiet {
		fmt.Fprintln(a.outW, "Nothing to do (all targets up to date).")
	}
	return nil
}

// Redo force-reruns a target: alone with only=true, or together with every
// transitive dependent otherwise.
func (a *App) Redo(ctx context.Context, target string, only bool) error {
	ctx = a.Context(ctx)

	t, err := a.registry.FindTarget(target)
	if err != nil {
		return err
	}
	if err := a.Preflight(t); err != nil {
		return err
	}

	exec := a.Executor()
	var ran bool
	if only {
		ran, err = exec.RedoOnly(ctx, target)
	} else {
		ran, err = exec.RedoWithDependents(ctx, target)
	}
	if err != nil {
		return err
	}
	if !ran && !a.config.Quiet {
		fmt.Fprintln(a.outW, "Nothing to do.")
	}
	return nil
}

// newLogger creates an isolated slog.Logger; the global default is never
// touched so parallel tests stay independent.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
