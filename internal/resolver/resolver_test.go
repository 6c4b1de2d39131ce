package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomake/internal/task"
)

// buildRegistry registers tasks from a name -> depends map plus optional
// input/output wiring, failing the test on any registration error.
func buildRegistry(t *testing.T, specs []task.Spec) *task.Registry {
	t.Helper()
	reg := task.NewRegistry()
	for _, spec := range specs {
		_, err := reg.Register(spec)
		require.NoError(t, err)
	}
	return reg
}

func names(tasks []*task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, tk.Name)
	}
	return out
}

func TestDependencies(t *testing.T) {
	t.Run("explicit depends come before input owners", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "gen", Outputs: []string{"out/data.json"}},
			{Name: "setup"},
			{Name: "build", Depends: []string{"setup"}, Inputs: []string{"out/data.json"}},
		})
		r := New(reg)

		deps, err := r.Dependencies(reg.Get("build"))
		require.NoError(t, err)
		assert.Equal(t, []string{"setup", "gen"}, names(deps))
	})

	t.Run("deduplicates a task reached both ways", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "gen", Outputs: []string{"out/data.json"}},
			{Name: "build", Depends: []string{"gen"}, Inputs: []string{"out/data.json"}},
		})
		r := New(reg)

		deps, err := r.Dependencies(reg.Get("build"))
		require.NoError(t, err)
		assert.Equal(t, []string{"gen"}, names(deps))
	})

	t.Run("unknown depends name is an error", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "build", Depends: []string{"ghost"}},
		})
		r := New(reg)

		_, err := r.Dependencies(reg.Get("build"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `depends on unknown task "ghost"`)
	})

	t.Run("unowned input is not an error", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "build", Inputs: []string{"src/main.c"}},
		})
		r := New(reg)

		deps, err := r.Dependencies(reg.Get("build"))
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}

func TestResolve(t *testing.T) {
	t.Run("linear chain", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "a"},
			{Name: "b", Depends: []string{"a"}},
			{Name: "c", Depends: []string{"b"}},
		})
		r := New(reg)

		order, err := r.Resolve(reg.Get("c"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, names(order))
	})

	t.Run("diamond visits each task once", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "a"},
			{Name: "b", Depends: []string{"a"}},
			{Name: "c", Depends: []string{"a"}},
			{Name: "d", Depends: []string{"b", "c"}},
		})
		r := New(reg)

		order, err := r.Resolve(reg.Get("d"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, names(order))
	})

	t.Run("self dependency via inputs is ignored", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "a", Inputs: []string{"a.log"}, Outputs: []string{"a.log", "a.out"}},
		})
		r := New(reg)

		order, err := r.Resolve(reg.Get("a"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, names(order))
	})

	t.Run("cycle reports the full path", func(t *testing.T) {
		reg := buildRegistry(t, []task.Spec{
			{Name: "a", Depends: []string{"c"}},
			{Name: "b", Depends: []string{"a"}},
			{Name: "c", Depends: []string{"b"}},
		})
		r := New(reg)

		_, err := r.Resolve(reg.Get("a"))
		require.Error(t, err)

		var cycleErr *CyclicDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"a", "c", "b", "a"}, cycleErr.Cycle)
		assert.EqualError(t, err, "cyclic dependency: a -> c -> b -> a")
	})
}

func TestDependents(t *testing.T) {
	reg := buildRegistry(t, []task.Spec{
		{Name: "gen", Outputs: []string{"out/data.json"}},
		{Name: "render", Inputs: []string{"out/data.json"}},
		{Name: "verify", Depends: []string{"gen"}},
		{Name: "unrelated"},
	})
	r := New(reg)

	deps := r.Dependents(reg.Get("gen"))
	assert.Equal(t, []string{"render", "verify"}, names(deps))

	assert.Empty(t, r.Dependents(reg.Get("unrelated")))
}

func TestTransitiveDependents(t *testing.T) {
	// a <- b <- d, a <- c <- d
	reg := buildRegistry(t, []task.Spec{
		{Name: "a"},
		{Name: "b", Depends: []string{"a"}},
		{Name: "c", Depends: []string{"a"}},
		{Name: "d", Depends: []string{"b", "c"}},
	})
	r := New(reg)

	assert.Equal(t, []string{"a", "b", "c", "d"}, r.TransitiveDependents(reg.Get("a")))
	assert.Equal(t, []string{"b", "d"}, r.TransitiveDependents(reg.Get("b")))
	assert.Equal(t, []string{"d"}, r.TransitiveDependents(reg.Get("d")))
}

func TestTransitiveDeps(t *testing.T) {
	reg := buildRegistry(t, []task.Spec{
		{Name: "a"},
		{Name: "b", Depends: []string{"a"}},
		{Name: "c", Depends: []string{"a"}},
		{Name: "d", Depends: []string{"b", "c"}},
	})
	r := New(reg)

	assert.Equal(t, []string{"d", "b", "c", "a"}, r.TransitiveDeps(reg.Get("d")))
	assert.Equal(t, []string{"a"}, r.TransitiveDeps(reg.Get("a")))
}

func TestToDot(t *testing.T) {
	reg := buildRegistry(t, []task.Spec{
		{Name: "gen", Outputs: []string{"out/data.json"}},
		{Name: "render", Inputs: []string{"out/data.json"}, Outputs: []string{"out/report.html"}},
	})
	r := New(reg)

	dot, err := r.ToDot(reg.Get("render"))
	require.NoError(t, err)

	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, `"gen"`)
	assert.Contains(t, dot, `"render"`)
	assert.Contains(t, dot, `"out/data.json" -> "render"`)
	assert.Contains(t, dot, `"gen" -> "out/data.json"`)
}
