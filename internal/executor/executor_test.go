package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomake/internal/task"
)

// fixture builds a registry rooted in a temp dir and records the order in
// which task bodies run.
type fixture struct {
	t   *testing.T
	dir string
	reg *task.Registry
	ran []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, dir: t.TempDir(), reg: task.NewRegistry()}
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *fixture) write(name, content string) string {
	f.t.Helper()
	p := f.path(name)
	require.NoError(f.t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// addTask registers a task whose body records its run and writes every
// declared output file. Paths are relative to the fixture dir.
func (f *fixture) addTask(spec task.Spec) *task.Task {
	f.t.Helper()
	for i, p := range spec.Inputs {
		spec.Inputs[i] = f.path(p)
	}
	for i, p := range spec.Outputs {
		spec.Outputs[i] = f.path(p)
	}
	if spec.Touch != "" {
		spec.Touch = f.path(spec.Touch)
	}

	name := spec.Name
	outputs := append([]string(nil), spec.Outputs...)
	if spec.Body == nil {
		spec.Body = func(ctx context.Context, vars map[string]any) error {
			f.ran = append(f.ran, name)
			for _, out := range outputs {
				if err := os.WriteFile(out, []byte(name), 0o644); err != nil {
					return err
				}
			}
			return nil
		}
	}

	tk, err := f.reg.Register(spec)
	require.NoError(f.t, err)
	return tk
}

func (f *fixture) executor(opts Options) *Executor {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return New(f.reg, nil, opts)
}

// backdate pushes a file's mtime into the past so a later write is reliably
// newer regardless of filesystem timestamp granularity.
func backdate(t *testing.T, path string, d time.Duration) {
	t.Helper()
	past := time.Now().Add(-d)
	require.NoError(t, os.Chtimes(path, past, past))
}

func TestShouldRun(t *testing.T) {
	t.Run("phony task always runs", func(t *testing.T) {
		f := newFixture(t)
		tk := f.addTask(task.Spec{Name: "all"})

		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, false)
		require.NoError(t, err)
		assert.True(t, run)
	})

	t.Run("missing output forces a run", func(t *testing.T) {
		f := newFixture(t)
		tk := f.addTask(task.Spec{Name: "gen", Outputs: []string{"out.txt"}})

		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, false)
		require.NoError(t, err)
		assert.True(t, run)
	})

	t.Run("no inputs and outputs present means up to date", func(t *testing.T) {
		f := newFixture(t)
		f.write("out.txt", "x")
		tk := f.addTask(task.Spec{Name: "gen", Outputs: []string{"out.txt"}})

		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, false)
		require.NoError(t, err)
		assert.False(t, run)
	})

	t.Run("newer input makes the task stale", func(t *testing.T) {
		f := newFixture(t)
		out := f.write("out.txt", "x")
		backdate(t, out, time.Hour)
		f.write("in.txt", "y")
		tk := f.addTask(task.Spec{Name: "gen", Inputs: []string{"in.txt"}, Outputs: []string{"out.txt"}})

		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, false)
		require.NoError(t, err)
		assert.True(t, run)
	})

	t.Run("older input leaves the task up to date", func(t *testing.T) {
		f := newFixture(t)
		in := f.write("in.txt", "y")
		backdate(t, in, time.Hour)
		f.write("out.txt", "x")
		tk := f.addTask(task.Spec{Name: "gen", Inputs: []string{"in.txt"}, Outputs: []string{"out.txt"}})

		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, false)
		require.NoError(t, err)
		assert.False(t, run)
	})

	t.Run("oldest output is the comparison point", func(t *testing.T) {
		f := newFixture(t)
		old := f.write("old.txt", "x")
		backdate(t, old, 2*time.Hour)
		f.write("new.txt", "x")
		in := f.write("in.txt", "y")
		backdate(t, in, time.Hour)
		tk := f.addTask(task.Spec{
			Name:    "gen",
			Inputs:  []string{"in.txt"},
			Outputs: []string{"old.txt", "new.txt"},
		})

		// Input is newer than the oldest output even though the newest
		// output is fresher than the input.
		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, false)
		require.NoError(t, err)
		assert.True(t, run)
	})

	t.Run("missing input is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.write("out.txt", "x")
		tk := f.addTask(task.Spec{Name: "gen", Inputs: []string{"absent.txt"}, Outputs: []string{"out.txt"}})

		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, false)
		require.NoError(t, err)
		assert.False(t, run)
	})

	t.Run("force wins", func(t *testing.T) {
		f := newFixture(t)
		f.write("out.txt", "x")
		tk := f.addTask(task.Spec{Name: "gen", Outputs: []string{"out.txt"}})

		run, err := f.executor(Options{Quiet: true}).ShouldRun(tk, true)
		require.NoError(t, err)
		assert.True(t, run)
	})
}

func TestRunSequential(t *testing.T) {
	t.Run("pipeline runs once then is up to date", func(t *testing.T) {
		f := newFixture(t)
		f.write("raw.txt", "data")
		f.addTask(task.Spec{Name: "process", Inputs: []string{"raw.txt"}, Outputs: []string{"processed.txt"}})
		f.addTask(task.Spec{Name: "render", Inputs: []string{"processed.txt"}, Outputs: []string{"report.txt"}})

		e := f.executor(Options{Quiet: true})

		ran, err := e.Run(context.Background(), "render")
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, []string{"process", "render"}, f.ran)

		// Second run finds everything fresh.
		f.ran = nil
		ran, err = e.Run(context.Background(), "render")
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Empty(t, f.ran)
	})

	t.Run("phony tail always reruns", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{Name: "gen", Outputs: []string{"out.txt"}})
		f.addTask(task.Spec{Name: "check", Inputs: []string{"out.txt"}})

		e := f.executor(Options{Quiet: true})
		_, err := e.Run(context.Background(), "check")
		require.NoError(t, err)
		assert.Equal(t, []string{"gen", "check"}, f.ran)

		// gen is fresh now but check has no outputs, so it runs again.
		f.ran = nil
		ran, err := e.Run(context.Background(), "check")
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, []string{"check"}, f.ran)
	})

	t.Run("touching an input reruns the affected suffix", func(t *testing.T) {
		f := newFixture(t)
		raw := f.write("raw.txt", "data")
		backdate(t, raw, time.Hour)
		f.addTask(task.Spec{Name: "process", Inputs: []string{"raw.txt"}, Outputs: []string{"processed.txt"}})
		f.addTask(task.Spec{Name: "render", Inputs: []string{"processed.txt"}, Outputs: []string{"report.txt"}})

		e := f.executor(Options{Quiet: true})
		_, err := e.Run(context.Background(), "render")
		require.NoError(t, err)

		for _, name := range []string{"processed.txt", "report.txt"} {
			backdate(t, f.path(name), time.Minute)
		}
		f.write("raw.txt", "changed")

		f.ran = nil
		ran, err := e.Run(context.Background(), "render")
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, []string{"process", "render"}, f.ran)
	})

	t.Run("target by output path", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{Name: "gen", Outputs: []string{"out.txt"}})

		e := f.executor(Options{Quiet: true})
		ran, err := e.Run(context.Background(), f.path("out.txt"))
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, []string{"gen"}, f.ran)
	})

	t.Run("unknown target", func(t *testing.T) {
		f := newFixture(t)
		e := f.executor(Options{Quiet: true})

		_, err := e.Run(context.Background(), "ghost")
		require.Error(t, err)

		var unknownErr *task.UnknownTargetError
		assert.ErrorAs(t, err, &unknownErr)
	})

	t.Run("body failure wraps ExecutionError and halts", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("boom")
		f.addTask(task.Spec{Name: "a", Body: func(ctx context.Context, vars map[string]any) error {
			return boom
		}})
		f.addTask(task.Spec{Name: "b", Depends: []string{"a"}})

		e := f.executor(Options{Quiet: true})
		_, err := e.Run(context.Background(), "b")
		require.Error(t, err)

		var execErr *ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, "a", execErr.Task)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, f.ran)
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{Name: "a"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := f.executor(Options{Quiet: true})
		_, err := e.Run(ctx, "a")
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, f.ran)
	})
}

func TestRunGates(t *testing.T) {
	t.Run("run_if false skips even when forced", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{Name: "guarded", RunIf: func() bool { return false }})

		e := f.executor(Options{Quiet: true, Force: true})
		ran, err := e.Run(context.Background(), "guarded")
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Empty(t, f.ran)
	})

	t.Run("run_if_not true skips", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{Name: "guarded", RunIfNot: func() bool { return true }})

		e := f.executor(Options{Quiet: true})
		ran, err := e.Run(context.Background(), "guarded")
		require.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("open gates let the task run", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{
			Name:     "guarded",
			RunIf:    func() bool { return true },
			RunIfNot: func() bool { return false },
		})

		e := f.executor(Options{Quiet: true})
		ran, err := e.Run(context.Background(), "guarded")
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, []string{"guarded"}, f.ran)
	})
}

func TestTouch(t *testing.T) {
	f := newFixture(t)
	f.addTask(task.Spec{Name: "stamp", Touch: ".stamp", Body: func(ctx context.Context, vars map[string]any) error {
		return nil
	}})

	e := f.executor(Options{Quiet: true})
	ran, err := e.Run(context.Background(), "stamp")
	require.NoError(t, err)
	assert.True(t, ran)
	assert.FileExists(t, f.path(".stamp"))

	// The stamp makes the task non-phony and now up to date.
	ran, err = e.Run(context.Background(), "stamp")
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestRunOutput(t *testing.T) {
	t.Run("progress lines name each running task", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{Name: "gen", Outputs: []string{"out.txt"}})

		var buf bytes.Buffer
		e := f.executor(Options{Out: &buf})
		_, err := e.Run(context.Background(), "gen")
		require.NoError(t, err)
		assert.Equal(t, "[run] gen\n", buf.String())
	})

	t.Run("quiet suppresses progress", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(task.Spec{Name: "gen", Outputs: []string{"out.txt"}})

		var buf bytes.Buffer
		e := f.executor(Options{Out: &buf, Quiet: true})
		_, err := e.Run(context.Background(), "gen")
		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}
