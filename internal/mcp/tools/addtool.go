package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking that the zero value of its output
// type passes the schema the SDK infers for it.
//
// Panics if the check fails.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema validates the zero value of T against the JSON schema the
// MCP SDK infers from T.
//
// Two mismatches are caught. A nil slice marshals as null while the inferred
// schema says "array"; fix with omitzero or an empty slice. A type with its
// own MarshalJSON (json.RawMessage, time.Time, a generated JSON schema) is
// inferred from its Go fields, not from what it marshals to; fix by declaring
// the field as any and converting with types.ToAny.
//
// No-op for an untyped any output or when inference fails; the SDK reports
// the latter itself.
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	elem := rt
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	if paths := findMarshalerFields(elem, nil, make(map[reflect.Type]bool)); len(paths) > 0 {
		panic(fmt.Sprintf(
			"AddTool %q: output type %s has custom JSON marshaling at %s\n"+
				"  the inferred schema describes the Go fields, not the marshaled JSON\n"+
				"  Fix: declare the field as any and convert with types.ToAny",
			toolName, elem, strings.Join(paths, ", "),
		))
	}

	schema, err := jsonschema.ForType(elem, &jsonschema.ForOptions{})
	if err != nil {
		return
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return
	}

	data, err := json.Marshal(reflect.Zero(elem).Interface())
	if err != nil {
		return
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}

	if err := resolved.Validate(&v); err != nil {
		panic(fmt.Sprintf(
			"AddTool %q: zero value of output type %s fails schema validation: %v\n"+
				"  JSON: %s\n"+
				"  Fix: add `omitzero` to nil-defaulting slice fields, or initialize them to empty slices",
			toolName, elem, err, data,
		))
	}
}

var marshalerType = reflect.TypeFor[json.Marshaler]()

// findMarshalerFields walks t and returns the paths of values whose type
// implements json.Marshaler.
func findMarshalerFields(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType) {
		return []string{strings.Join(path, ".")}
	}
	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var found []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("json") == "-" {
				continue
			}
			found = append(found, findMarshalerFields(f.Type, append(path, f.Name), visited)...)
		}
	case reflect.Slice, reflect.Array:
		found = append(found, findMarshalerFields(t.Elem(), append(path, "[]"), visited)...)
	case reflect.Map:
		found = append(found, findMarshalerFields(t.Elem(), append(path, "[value]"), visited)...)
	}
	return found
}
