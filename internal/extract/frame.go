package extract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

var (
	// ErrUnrecognizedType is returned for emitted values that cannot be stored
	// in a column (booleans, big integers, ...).
	ErrUnrecognizedType = errors.New("unrecognized type")
	// ErrUnsupportedOperation is returned for nested objects or arrays, and
	// for columns that would mix value types.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// ValueColumn names the column scalar results are stored in.
const ValueColumn = "value"

// ColumnType is the element type of a column.
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeNumber ColumnType = "number"
	TypeInt    ColumnType = "int64"
)

// Column is a named, homogeneously typed list of values.
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Values []any      `json:"values"`
}

// Frame is the output of one rule.
type Frame struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column returns the column with the given name.
func (f *Frame) Column(name string) (*Column, bool) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return &f.Columns[i], true
		}
	}
	return nil, false
}

// FrameDefinition evaluates every named rule of def against a decoded
// response, producing one frame per rule in rule order. Rules with an empty
// name are skipped.
func FrameDefinition(def querydef.Definition, response any) ([]Frame, error) {
	named := def.Named()
	frames := make([]Frame, 0, len(named))
	for _, rule := range named {
		frame, err := FrameRule(rule, response)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// FrameRule evaluates a single rule. Every value the expression emits is
// framed into the same column set:
//   - an object contributes one value per key
//   - an array is flattened and each element framed in turn
//   - a scalar is appended to the "value" column
//
// Null object members become "" and emitted nulls are skipped. Columns are
// returned in key order.
func FrameRule(rule querydef.Rule, response any) (Frame, error) {
	code, err := Compile(rule.Expression)
	if err != nil {
		return Frame{}, err
	}
	values, err := Evaluate(code, response)
	if err != nil {
		return Frame{}, err
	}

	b := newFrameBuilder()
	for _, v := range values {
		if err := b.add(v); err != nil {
			return Frame{}, err
		}
	}
	return b.frame(rule.Name), nil
}

type frameBuilder struct {
	columns map[string]*Column
}

func newFrameBuilder() *frameBuilder {
	return &frameBuilder{columns: make(map[string]*Column)}
}

func (b *frameBuilder) add(v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		// Sorted so a type conflict is reported deterministically.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			member := val[k]
			if member == nil {
				member = ""
			}
			if err := b.appendScalar(k, member); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range val {
			if err := b.add(item); err != nil {
				return err
			}
		}
		return nil
	}
	return b.appendScalar(ValueColumn, v)
}

func (b *frameBuilder) appendScalar(name string, v any) error {
	typ, cell, err := scalar(v)
	if err != nil {
		return err
	}
	col, ok := b.columns[name]
	if !ok {
		col = &Column{Name: name, Type: typ}
		b.columns[name] = col
	}
	if col.Type != typ {
		return fmt.Errorf("column %q mixes %s and %s values: %w", name, col.Type, typ, ErrUnsupportedOperation)
	}
	col.Values = append(col.Values, cell)
	return nil
}

func (b *frameBuilder) frame(name string) Frame {
	names := make([]string, 0, len(b.columns))
	for k := range b.columns {
		names = append(names, k)
	}
	sort.Strings(names)

	f := Frame{Name: name, Columns: make([]Column, 0, len(names))}
	for _, k := range names {
		f.Columns = append(f.Columns, *b.columns[k])
	}
	return f
}

// scalar classifies a value emitted by gojq. gojq yields int for integral
// results of arithmetic and builtins such as length.
func scalar(v any) (ColumnType, any, error) {
	switch val := v.(type) {
	case string:
		return TypeString, val, nil
	case float64:
		return TypeNumber, val, nil
	case int:
		return TypeInt, int64(val), nil
	case int64:
		return TypeInt, val, nil
	case map[string]any:
		return "", nil, fmt.Errorf("nested objects are unsupported: %w", ErrUnsupportedOperation)
	case []any:
		return "", nil, fmt.Errorf("nested arrays are unsupported: %w", ErrUnsupportedOperation)
	case nil:
		return "", nil, fmt.Errorf("type: null: %w", ErrUnrecognizedType)
	}
	return "", nil, fmt.Errorf("type: %T: %w", v, ErrUnrecognizedType)
}
