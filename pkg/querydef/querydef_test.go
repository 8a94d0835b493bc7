package querydef

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition_WireFormat(t *testing.T) {
	raw := []byte(`{"query":"{ countries { name } }","fields":[{"name":"names","jq":".data.countries[].name"}]}`)

	var d Definition
	require.NoError(t, json.Unmarshal(raw, &d))
	assert.Equal(t, "{ countries { name } }", d.RawQuery)
	require.Len(t, d.Rules, 1)
	assert.Equal(t, Rule{Name: "names", Expression: ".data.countries[].name"}, d.Rules[0])

	out, err := json.Marshal(Definition{RawQuery: "{ a }"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"{ a }"}`, string(out))
}

func TestDefinition_WithRawQueryKeepsRules(t *testing.T) {
	d := Definition{RawQuery: "a", Rules: []Rule{{Name: "x", Expression: ".x"}}}

	next := d.WithRawQuery("b")
	assert.Equal(t, "b", next.RawQuery)
	assert.Equal(t, d.Rules, next.Rules)
	assert.Equal(t, "a", d.RawQuery)

	next.Rules[0].Name = "changed"
	assert.Equal(t, "x", d.Rules[0].Name, "copy must not alias the receiver")
}

func TestDefinition_WithRulesReplacesWholesale(t *testing.T) {
	d := Definition{RawQuery: "q", Rules: []Rule{{Name: "a"}, {Name: "b"}}}

	next := d.WithRules([]Rule{{Name: "c"}})
	assert.Equal(t, "q", next.RawQuery)
	assert.Equal(t, []Rule{{Name: "c"}}, next.Rules)
	assert.Len(t, d.Rules, 2)
}

func TestDefinition_Equal(t *testing.T) {
	assert.True(t, Definition{RawQuery: "q"}.Equal(Definition{RawQuery: "q", Rules: []Rule{}}))
	assert.False(t, Definition{RawQuery: "q"}.Equal(Definition{RawQuery: "r"}))
	assert.False(t, Definition{Rules: []Rule{{Name: "a"}, {Name: "b"}}}.Equal(Definition{Rules: []Rule{{Name: "b"}, {Name: "a"}}}))
}

func TestDefinition_Named(t *testing.T) {
	d := Definition{Rules: []Rule{{Name: "a"}, {}, {Name: "b"}}}
	assert.Equal(t, []Rule{{Name: "a"}, {Name: "b"}}, d.Named())
}
