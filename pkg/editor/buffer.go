package editor

import (
	"errors"
	"fmt"

	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

// Field names a mutable field of a rule.
type Field string

// Editable rule fields.
const (
	FieldName       Field = "name"
	FieldExpression Field = "expression"
)

// ParseField maps user input to a Field. "jq" is accepted as an alias for the
// expression field because that is its persisted name.
func ParseField(s string) (Field, error) {
	switch s {
	case "name":
		return FieldName, nil
	case "expression", "jq":
		return FieldExpression, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

var (
	// ErrIndexOutOfRange is returned when an edit targets a rule that does not exist.
	ErrIndexOutOfRange = errors.New("editor: rule index out of range")

	// ErrUnknownField is returned for a field other than name or expression.
	ErrUnknownField = errors.New("editor: unknown rule field")
)

// Buffer is an immutable snapshot of the rules being edited.
//
// Every edit returns a new Buffer. Entries that an edit did not touch keep the
// same *querydef.Rule pointer, so a renderer can detect changed rows with a
// pointer comparison and fall back to Equal for whole-buffer comparison.
// The pointed-to rules must be treated as read-only.
type Buffer struct {
	rules []*querydef.Rule
}

// NewBuffer seeds a buffer from a rule list. A nil list gives an empty buffer.
func NewBuffer(rules []querydef.Rule) Buffer {
	out := make([]*querydef.Rule, len(rules))
	for i := range rules {
		r := rules[i]
		out[i] = &r
	}
	return Buffer{rules: out}
}

// Len returns the number of rules.
func (b Buffer) Len() int {
	return len(b.rules)
}

// At returns the shared rule at index i, or nil when i is out of range.
func (b Buffer) At(i int) *querydef.Rule {
	if i < 0 || i >= len(b.rules) {
		return nil
	}
	return b.rules[i]
}

// UpdateField returns a buffer where one field of rule i holds value.
// On error the receiver is returned unchanged.
func (b Buffer) UpdateField(i int, field Field, value string) (Buffer, error) {
	if i < 0 || i >= len(b.rules) {
		return b, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(b.rules))
	}

	updated := *b.rules[i]
	switch field {
	case FieldName:
		updated.Name = value
	case FieldExpression:
		updated.Expression = value
	default:
		return b, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	next := make([]*querydef.Rule, len(b.rules))
	copy(next, b.rules)
	next[i] = &updated
	return Buffer{rules: next}, nil
}

// Append returns a buffer with one blank rule added at the end.
func (b Buffer) Append() Buffer {
	next := make([]*querydef.Rule, len(b.rules), len(b.rules)+1)
	copy(next, b.rules)
	next = append(next, &querydef.Rule{})
	return Buffer{rules: next}
}

// Rules returns the buffer contents as a fresh rule list. The result is never
// nil so a committed empty buffer persists as an empty list.
func (b Buffer) Rules() []querydef.Rule {
	out := make([]querydef.Rule, len(b.rules))
	for i, r := range b.rules {
		out[i] = *r
	}
	return out
}

// Equal reports whether two buffers hold the same rules in the same order.
func (b Buffer) Equal(other Buffer) bool {
	if len(b.rules) != len(other.rules) {
		return false
	}
	for i := range b.rules {
		if b.rules[i] == other.rules[i] {
			continue
		}
		if *b.rules[i] != *other.rules[i] {
			return false
		}
	}
	return true
}
