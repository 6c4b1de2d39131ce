package vars

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// override is one parsed --vars entry. The dotted form task.var=value keeps
// the raw string for later coercion; the bulk form task={...} holds the
// decoded JSON object as typed values.
type override struct {
	original string
	taskName string
	varName  string
	raw      string
	object   map[string]cty.Value
}

func parseOverride(entry string) (override, error) {
	key, value, found := strings.Cut(entry, "=")
	if !found {
		return override{}, fmt.Errorf("invalid --vars entry %q (missing '=')", entry)
	}
	if key == "" {
		return override{}, fmt.Errorf("invalid --vars entry %q (missing key)", entry)
	}

	if strings.Contains(key, ".") {
		taskName, varName, _ := strings.Cut(key, ".")
		if taskName == "" || varName == "" {
			return override{}, fmt.Errorf("invalid --vars entry %q", entry)
		}
		return override{
			original: entry,
			taskName: taskName,
			varName:  varName,
			raw:      value,
		}, nil
	}

	ty, err := ctyjson.ImpliedType([]byte(value))
	if err != nil {
		return override{}, fmt.Errorf("invalid --vars entry %q: %w", entry, err)
	}
	if !ty.IsObjectType() {
		return override{}, fmt.Errorf("invalid --vars entry %q (bulk value must be a JSON object)", entry)
	}
	val, err := ctyjson.Unmarshal([]byte(value), ty)
	if err != nil {
		return override{}, fmt.Errorf("invalid --vars entry %q: %w", entry, err)
	}

	object := make(map[string]cty.Value)
	for name, v := range val.AsValueMap() {
		object[name] = v
	}
	return override{original: entry, taskName: key, object: object}, nil
}

// sortedKeys keeps error reporting deterministic when applying a mapping.
func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
