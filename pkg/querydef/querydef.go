// Package querydef defines the persisted query definition: raw GraphQL query
// text plus an ordered list of named extraction rules.
//
// Definitions are owned by the host. Values in this package are treated as
// immutable: the With* helpers return copies and never touch the receiver.
package querydef

// Rule is a named extraction expression. The expression is opaque here; it is
// evaluated by the backend executor, never by the editor.
type Rule struct {
	Name       string `json:"name" yaml:"name" jsonschema_description:"Output field name"`
	Expression string `json:"jq" yaml:"jq" jsonschema_description:"jq expression applied to the response"`
}

// Definition is the persisted unit of configuration.
type Definition struct {
	RawQuery string `json:"query" yaml:"query" jsonschema_description:"GraphQL query text"`
	Rules    []Rule `json:"fields,omitempty" yaml:"fields,omitempty" jsonschema_description:"Ordered extraction rules"`
}

// Clone returns a deep copy of d.
func (d Definition) Clone() Definition {
	out := Definition{RawQuery: d.RawQuery}
	if d.Rules != nil {
		out.Rules = make([]Rule, len(d.Rules))
		copy(out.Rules, d.Rules)
	}
	return out
}

// WithRawQuery returns a copy of d with the raw query replaced.
// Rules are carried over unchanged.
func (d Definition) WithRawQuery(q string) Definition {
	out := d.Clone()
	out.RawQuery = q
	return out
}

// WithRules returns a copy of d whose rule list is replaced wholesale by rules.
func (d Definition) WithRules(rules []Rule) Definition {
	out := Definition{RawQuery: d.RawQuery}
	if rules != nil {
		out.Rules = make([]Rule, len(rules))
		copy(out.Rules, rules)
	}
	return out
}

// Equal reports whether d and other hold the same query text and rules.
// A nil rule list and an empty one compare equal.
func (d Definition) Equal(other Definition) bool {
	if d.RawQuery != other.RawQuery {
		return false
	}
	return RulesEqual(d.Rules, other.Rules)
}

// RulesEqual compares two rule lists by value and order.
func RulesEqual(a, b []Rule) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Named returns the rules that have a non-empty name, preserving order.
// Unnamed rules are placeholders the backend skips.
func (d Definition) Named() []Rule {
	out := make([]Rule, 0, len(d.Rules))
	for _, r := range d.Rules {
		if r.Name != "" {
			out = append(out, r)
		}
	}
	return out
}
