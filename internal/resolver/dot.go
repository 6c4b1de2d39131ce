package resolver

import (
	"fmt"
	"strings"

	"gomake/internal/task"
)

// ToDot renders the dependency graph reachable from t in Graphviz DOT form.
// Tasks become box nodes, artifact paths become ellipse nodes; a task points
// at each output it produces and each input points at the tasks consuming
// it. The exact text layout is not a compatibility contract.
func (r *Resolver) ToDot(t *task.Task) (string, error) {
	order, err := r.Resolve(t)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", quote(t.Name))
	b.WriteString("  rankdir=LR;\n")

	seenFiles := make(map[string]struct{})
	file := func(path string) {
		if _, ok := seenFiles[path]; ok {
			return
		}
		seenFiles[path] = struct{}{}
		fmt.Fprintf(&b, "  %s [shape=ellipse];\n", quote(path))
	}

	for _, cur := range order {
		fmt.Fprintf(&b, "  %s [shape=box];\n", quote(cur.Name))
		for _, out := range cur.Outputs {
			file(out)
		}
		for _, in := range cur.Inputs {
			file(in)
		}
	}
	for _, cur := range order {
		for _, out := range cur.Outputs {
			fmt.Fprintf(&b, "  %s -> %s;\n", quote(cur.Name), quote(out))
		}
		for _, in := range cur.Inputs {
			fmt.Fprintf(&b, "  %s -> %s;\n", quote(in), quote(cur.Name))
		}
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
