package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

func codeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

func TestToolEditorOpen_MissingDefinitionStartsEmpty(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")

	_, out, err := ToolEditorOpen(d)(context.Background(), nil, EditorOpenInput{Name: "countries"})
	require.NoError(t, err)

	assert.False(t, out.Found)
	assert.NotEmpty(t, out.Editor.SessionID)
	assert.True(t, out.Editor.SupportsRules)
	assert.Empty(t, out.Editor.Rows)
	assert.NotEmpty(t, out.Hints)
}

func TestToolEditorOpen_LoadsStoredDefinition(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	require.NoError(t, d.Store.Save("countries", querydef.Definition{
		RawQuery: "{ countries { code } }",
		Rules:    []querydef.Rule{{Name: "codes", Expression: ".data.countries[].code"}},
	}))

	_, out, err := ToolEditorOpen(d)(context.Background(), nil, EditorOpenInput{Name: "countries"})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, "{ countries { code } }", out.Editor.RawQuery)
	assert.Equal(t, []string{"countries"}, out.Editor.Outline.Operations[0].Fields)
	assert.Len(t, out.Editor.Rows, 1)
}

func TestToolEditorOpen_PlainQueryEditor(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	off := false

	_, out, err := ToolEditorOpen(d)(context.Background(), nil, EditorOpenInput{Name: "plain", SupportsRules: &off})
	require.NoError(t, err)
	assert.False(t, out.Editor.SupportsRules)

	_, _, err = ToolRuleAppend(d)(context.Background(), nil, EditorSessionInput{SessionID: out.Editor.SessionID})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
}

func TestToolEditorOpen_InvalidName(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	_, _, err := ToolEditorOpen(d)(context.Background(), nil, EditorOpenInput{Name: "../etc/passwd"})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
}

func TestRuleEditing_CommitsOnlyOnBlur(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	ctx := context.Background()
	id := openSession(t, d, "q")

	_, _, err := ToolRuleAppend(d)(ctx, nil, EditorSessionInput{SessionID: id})
	require.NoError(t, err)
	_, _, err = ToolRuleEdit(d)(ctx, nil, RuleEditInput{SessionID: id, Index: 0, Field: "name", Value: "codes"})
	require.NoError(t, err)
	_, out, err := ToolRuleEdit(d)(ctx, nil, RuleEditInput{SessionID: id, Index: 0, Field: "expression", Value: ".data[].code"})
	require.NoError(t, err)

	assert.True(t, out.Editor.Dirty)
	assert.Equal(t, 0, out.Editor.Commits)
	_, found, err := d.Store.LoadOrEmpty("q")
	require.NoError(t, err)
	assert.False(t, found, "edits are not persisted before blur")

	_, out, err = ToolRuleBlur(d)(ctx, nil, EditorSessionInput{SessionID: id})
	require.NoError(t, err)
	assert.True(t, out.Committed)
	assert.False(t, out.Editor.Dirty)

	stored, err := d.Store.Load("q")
	require.NoError(t, err)
	want := querydef.Definition{Rules: []querydef.Rule{{Name: "codes", Expression: ".data[].code"}}}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Errorf("stored definition mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleEdit_Errors(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	ctx := context.Background()
	id := openSession(t, d, "q")

	_, _, err := ToolRuleEdit(d)(ctx, nil, RuleEditInput{SessionID: id, Index: 0, Field: "name", Value: "x"})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err), "index out of range")

	_, _, err = ToolRuleEdit(d)(ctx, nil, RuleEditInput{SessionID: id, Index: 0, Field: "value", Value: "."})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err), "unknown field")

	_, _, err = ToolRuleEdit(d)(ctx, nil, RuleEditInput{SessionID: "nope", Index: 0, Field: "name", Value: "x"})
	assert.Equal(t, ErrCodeNotFound, codeOf(err))
}

func TestRuleIssues_ReportInvalidExpressions(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	ctx := context.Background()
	id := openSession(t, d, "q")

	for range 2 {
		_, _, err := ToolRuleAppend(d)(ctx, nil, EditorSessionInput{SessionID: id})
		require.NoError(t, err)
	}
	_, _, err := ToolRuleEdit(d)(ctx, nil, RuleEditInput{SessionID: id, Index: 0, Field: "expression", Value: ".data | {"})
	require.NoError(t, err)
	_, out, err := ToolRuleEdit(d)(ctx, nil, RuleEditInput{SessionID: id, Index: 1, Field: "expression", Value: ".data.x"})
	require.NoError(t, err)

	require.Len(t, out.RuleIssues, 1)
	assert.Equal(t, 0, out.RuleIssues[0].Index)
}

func TestRawQuery_BlurKeepsCommittedRules(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	ctx := context.Background()
	require.NoError(t, d.Store.Save("q", querydef.Definition{
		RawQuery: "{ a }",
		Rules:    []querydef.Rule{{Name: "a", Expression: ".data.a"}},
	}))
	id := openSession(t, d, "q")

	_, out, err := ToolRawQueryEdit(d)(ctx, nil, RawQueryEditInput{SessionID: id, Text: "{ a b }"})
	require.NoError(t, err)
	assert.Equal(t, "{ a b }", out.Editor.RawQuery)
	assert.Equal(t, "{ a }", out.Editor.Persisted.RawQuery)

	_, out, err = ToolRawQueryBlur(d)(ctx, nil, EditorSessionInput{SessionID: id})
	require.NoError(t, err)
	assert.True(t, out.Committed)

	stored, err := d.Store.Load("q")
	require.NoError(t, err)
	assert.Equal(t, "{ a b }", stored.RawQuery)
	assert.Equal(t, []querydef.Rule{{Name: "a", Expression: ".data.a"}}, stored.Rules)

	_, out, err = ToolRawQueryBlur(d)(ctx, nil, EditorSessionInput{SessionID: id})
	require.NoError(t, err)
	assert.False(t, out.Committed, "no draft, nothing to commit")
}

func TestToolEditorClose_DiscardsDrafts(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	ctx := context.Background()
	id := openSession(t, d, "q")

	_, _, err := ToolRawQueryEdit(d)(ctx, nil, RawQueryEditInput{SessionID: id, Text: "{ draft }"})
	require.NoError(t, err)

	_, out, err := ToolEditorClose(d)(ctx, nil, EditorSessionInput{SessionID: id})
	require.NoError(t, err)
	assert.True(t, out.Closed)
	assert.True(t, out.DiscardedDraft)

	_, found, err := d.Store.LoadOrEmpty("q")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = ToolEditorState(d)(ctx, nil, EditorSessionInput{SessionID: id})
	assert.Equal(t, ErrCodeNotFound, codeOf(err))
}

func TestToolEditorList(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	openSession(t, d, "a")
	openSession(t, d, "b")

	_, out, err := ToolEditorList(d)(context.Background(), nil, EditorListInput{})
	require.NoError(t, err)
	require.Len(t, out.Sessions, 2)
	assert.Equal(t, "a", out.Sessions[0].Name)
	assert.Equal(t, "b", out.Sessions[1].Name)
}

func TestToolEditorState_RequiresSessionID(t *testing.T) {
	d := newTestDeps(t, &fakeExecutor{}, "")
	_, _, err := ToolEditorState(d)(context.Background(), nil, EditorSessionInput{})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
}
