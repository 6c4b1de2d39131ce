package vars

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// loadVarsFile parses an HCL vars file. Each top-level block names a task
// and its attributes carry that task's var values, already typed by the HCL
// parser:
//
//	deploy {
//	  env  = "production"
//	  port = 443
//	}
//
// Values must be literal; they are evaluated without any variable scope.
func loadVarsFile(path string) (map[string]map[string]cty.Value, []string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("vars file not found: %s", path)
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("invalid vars file %s: %s", path, diags.Error())
	}

	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, nil, fmt.Errorf("invalid vars file %s: unexpected body type", path)
	}
	for name := range body.Attributes {
		return nil, nil, fmt.Errorf("invalid vars file %s: top-level attribute %q (expected task blocks)", path, name)
	}

	sections := make(map[string]map[string]cty.Value)
	var order []string

	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, nil, fmt.Errorf("invalid vars file %s: block %q must not have labels", path, block.Type)
		}
		if len(block.Body.Blocks) > 0 {
			return nil, nil, fmt.Errorf("invalid vars file %s: section %q must only contain var assignments", path, block.Type)
		}

		section, exists := sections[block.Type]
		if !exists {
			section = make(map[string]cty.Value)
			sections[block.Type] = section
			order = append(order, block.Type)
		}
		for name, attr := range block.Body.Attributes {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, nil, fmt.Errorf("invalid vars file %s: section %q var %q: %s",
					path, block.Type, name, diags.Error())
			}
			section[name] = val
		}
	}
	return sections, order, nil
}
