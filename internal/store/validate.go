package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

// ValidationError lists the problems found in a stored document.
type ValidationError struct {
	Name     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("definition %q is invalid: %s", e.Name, strings.Join(e.Problems, "; "))
}

// validator checks decoded documents against the schema of querydef.Definition.
type validator struct {
	schema *jsonschema.Schema
}

// DefinitionSchema reflects the JSON Schema of a stored definition.
func DefinitionSchema() *invopop.Schema {
	r := &invopop.Reflector{DoNotReference: true, ExpandedStruct: true}
	return r.Reflect(&querydef.Definition{})
}

func newValidator() (*validator, error) {
	schemaJSON, err := json.Marshal(DefinitionSchema())
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("definition.json", schemaValue); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("definition.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &validator{schema: compiled}, nil
}

// validate checks a decoded document. The value is normalized through JSON
// first so YAML scalars reach the validator as JSON types.
func (v *validator) validate(doc any) []string {
	raw, err := json.Marshal(doc)
	if err != nil {
		return []string{fmt.Sprintf("document is not representable as JSON: %v", err)}
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return []string{fmt.Sprintf("invalid JSON: %v", err)}
	}

	err = v.schema.Validate(value)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	byPath := make(map[string][]string)
	collectProblems(verr, byPath)

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var problems []string
	for _, p := range paths {
		seen := make(map[string]bool)
		for _, msg := range byPath[p] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if p != "" {
				problems = append(problems, p+": "+msg)
			} else {
				problems = append(problems, msg)
			}
		}
	}
	return problems
}

var printer = message.NewPrinter(language.English)

// collectProblems gathers leaf errors keyed by instance path.
func collectProblems(err *jsonschema.ValidationError, byPath map[string][]string) {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		path := ""
		if len(err.InstanceLocation) > 0 {
			path = "/" + strings.Join(err.InstanceLocation, "/")
		}
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collectProblems(cause, byPath)
	}
}
