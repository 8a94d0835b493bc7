package preview

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// Shape infers a JSON Schema for a structured result so the operator can see
// which paths are available when writing extraction rules. Text results have
// no shape and return nil.
func Shape(res *Result) *jsonschema.Schema {
	if res == nil || res.Kind != KindStructured {
		return nil
	}
	s := shapeOf(res.Data)
	s.Version = jsonschema.Version
	return s
}

func shapeOf(v any) *jsonschema.Schema {
	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case float64:
		if math.Trunc(val) == val && !math.IsInf(val, 0) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case string:
		return &jsonschema.Schema{Type: "string"}
	case []any:
		s := &jsonschema.Schema{Type: "array"}
		for _, item := range val {
			s.Items = unionShape(s.Items, shapeOf(item))
		}
		return s
	case map[string]any:
		s := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, k := range sortedKeys(val) {
			s.Properties.Set(k, shapeOf(val[k]))
		}
		return s
	}
	return &jsonschema.Schema{}
}

// unionShape folds b into a. Objects merge their properties; differing
// primitive types become an anyOf.
func unionShape(a, b *jsonschema.Schema) *jsonschema.Schema {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Type == "object" && b.Type == "object":
		for pair := b.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if existing, ok := a.Properties.Get(pair.Key); ok {
				a.Properties.Set(pair.Key, unionShape(existing, pair.Value))
			} else {
				a.Properties.Set(pair.Key, pair.Value)
			}
		}
		return a
	case a.Type == "array" && b.Type == "array":
		a.Items = unionShape(a.Items, b.Items)
		return a
	case a.Type == b.Type && a.Type != "":
		return a
	case a.Type == "integer" && b.Type == "number", a.Type == "number" && b.Type == "integer":
		return &jsonschema.Schema{Type: "number"}
	}

	var branches []*jsonschema.Schema
	for _, s := range []*jsonschema.Schema{a, b} {
		if s.AnyOf != nil {
			branches = append(branches, s.AnyOf...)
		} else {
			branches = append(branches, s)
		}
	}
	seen := make(map[string]bool)
	merged := &jsonschema.Schema{}
	for _, s := range branches {
		if s.Type != "" && seen[s.Type] {
			continue
		}
		seen[s.Type] = true
		merged.AnyOf = append(merged.AnyOf, s)
	}
	return merged
}

// PathHint is a jq path to a scalar leaf together with its JSON type.
type PathHint struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Paths lists jq paths to the scalar leaves of a structured result, e.g.
// ".data.countries[].name". Arrays are walked through "[]" so each distinct
// path appears once. maxPaths <= 0 means no limit.
func Paths(res *Result, maxPaths int) []PathHint {
	if res == nil || res.Kind != KindStructured {
		return []PathHint{}
	}
	seen := make(map[string]bool)
	out := make([]PathHint, 0)
	var walk func(v any, path string)
	walk = func(v any, path string) {
		if maxPaths > 0 && len(out) >= maxPaths {
			return
		}
		switch val := v.(type) {
		case map[string]any:
			for _, k := range sortedKeys(val) {
				walk(val[k], path+jqKey(k))
			}
		case []any:
			for _, item := range val {
				walk(item, path+"[]")
			}
		default:
			if path == "" {
				path = "."
			}
			if !seen[path] {
				seen[path] = true
				out = append(out, PathHint{Path: path, Type: jsonType(val)})
			}
		}
	}
	walk(res.Data, "")
	return out
}

// jqKey renders an object key as a jq path segment.
func jqKey(k string) string {
	if k != "" && isPlainKey(k) {
		return "." + k
	}
	return fmt.Sprintf(".[%q]", k)
}

func isPlainKey(k string) bool {
	for i := 0; i < len(k); i++ {
		ch := k[i]
		alpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
		if !alpha && (i == 0 || ch < '0' || ch > '9') {
			return false
		}
	}
	return true
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	}
	return strings.ToLower(fmt.Sprintf("%T", v))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
