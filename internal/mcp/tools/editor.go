package tools

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/editor"
	"github.com/usestring/gqlquery-mcp/pkg/types"
)

// EditorOpenInput is the input for gql_editor_open.
type EditorOpenInput struct {
	Name          string `json:"name" jsonschema:"required,Definition name (letters, digits, '.', '_' and '-'). A missing definition starts empty"`
	SupportsRules *bool  `json:"supports_rules,omitempty" jsonschema:"Enable the extraction-rule list (default: true). Set false for a plain query editor"`
}

// EditorSessionInput addresses an open session.
type EditorSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session ID returned by gql_editor_open"`
}

// RuleEditInput is the input for gql_rule_edit.
type RuleEditInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session ID returned by gql_editor_open"`
	Index     int    `json:"index" jsonschema:"required,Zero-based rule row"`
	Field     string `json:"field" jsonschema:"required,Field to change: name or expression (alias: jq)"`
	Value     string `json:"value" jsonschema:"required,New field value (replaces the whole field)"`
}

// RawQueryEditInput is the input for gql_raw_query_edit.
type RawQueryEditInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session ID returned by gql_editor_open"`
	Text      string `json:"text" jsonschema:"required,Complete raw GraphQL query text"`
}

// EditorStateOutput is the output shared by the editor tools.
type EditorStateOutput struct {
	Editor     types.EditorView  `json:"editor"`
	Found      bool              `json:"found,omitempty"`     // gql_editor_open: a stored definition was loaded
	Committed  bool              `json:"committed,omitempty"` // a blur committed a definition
	RuleIssues []types.RuleIssue `json:"rule_issues,omitzero"`
	Hints      []string          `json:"hints,omitzero"`
}

// EditorCloseOutput is the output for gql_editor_close.
type EditorCloseOutput struct {
	SessionID      string `json:"session_id"`
	Closed         bool   `json:"closed"`
	DiscardedDraft bool   `json:"discarded_draft,omitempty"`
}

// EditorListInput is the input for gql_editor_list.
type EditorListInput struct{}

// EditorListOutput is the output for gql_editor_list.
type EditorListOutput struct {
	Sessions []EditorSessionInfo `json:"sessions,omitzero"`
}

// EditorSessionInfo summarizes an open session.
type EditorSessionInfo struct {
	SessionID     string `json:"session_id"`
	Name          string `json:"name"`
	SupportsRules bool   `json:"supports_rules"`
	Dirty         bool   `json:"dirty"`
	CreatedAtMs   int64  `json:"created_at_ms"`
}

func stateOutput(v types.EditorView) EditorStateOutput {
	out := EditorStateOutput{Editor: v, RuleIssues: ruleIssues(v.Rows)}

	if v.LastCommitError != "" {
		out.Hints = append(out.Hints, "The last commit was not saved: "+v.LastCommitError)
	}
	if v.SupportsRules && len(v.Rows) == 0 {
		out.Hints = append(out.Hints, "No extraction rules yet. Use gql_rule_append, then gql_rule_edit and gql_rule_blur.")
	}
	if v.RawQuery != "" && !v.Outline.Balanced {
		out.Hints = append(out.Hints, "The raw query has unbalanced braces.")
	}
	if v.Dirty {
		out.Hints = append(out.Hints, "There are uncommitted edits. Blur the field to persist them.")
	}
	return out
}

// ToolEditorOpen opens an editing session for a named definition.
func ToolEditorOpen(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorOpenInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorOpenInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
		if err := store.ValidateName(input.Name); err != nil {
			return nil, EditorStateOutput{}, WrapStoreError(input.Name, err)
		}
		opts := editor.Options{SupportsRules: true}
		if input.SupportsRules != nil {
			opts.SupportsRules = *input.SupportsRules
		}

		s, found, err := d.Sessions.Open(input.Name, opts)
		if err != nil {
			return nil, EditorStateOutput{}, WrapStoreError(input.Name, err)
		}
		v, err := s.View()
		if err != nil {
			return nil, EditorStateOutput{}, wrapSessionError(s.ID, err)
		}

		out := stateOutput(v)
		out.Found = found
		return nil, out, nil
	}
}

// ToolEditorState returns the current state of an editing session.
func ToolEditorState(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, EditorStateOutput{}, err
		}
		v, err := s.View()
		if err != nil {
			return nil, EditorStateOutput{}, wrapSessionError(input.SessionID, err)
		}
		return nil, stateOutput(v), nil
	}
}

// ToolRuleEdit changes one field of one rule row without committing.
func ToolRuleEdit(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input RuleEditInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input RuleEditInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
		field, err := editor.ParseField(input.Field)
		if err != nil {
			return nil, EditorStateOutput{}, ErrInvalidInput(fmt.Sprintf("field must be %q or %q", editor.FieldName, editor.FieldExpression))
		}
		return applyEdit(d, input.SessionID, func(ed *editor.Editor) error {
			return ed.EditRule(input.Index, field, input.Value)
		})
	}
}

// ToolRuleAppend adds a blank rule row without committing.
func ToolRuleAppend(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
		return applyEdit(d, input.SessionID, func(ed *editor.Editor) error {
			return ed.AppendRule()
		})
	}
}

// ToolRuleBlur commits the whole rule list.
func ToolRuleBlur(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
		out, err := applyCommit(d, input.SessionID, func(ed *editor.Editor) (bool, error) {
			_, err := ed.BlurRule()
			return err == nil, err
		})
		return nil, out, err
	}
}

// ToolRawQueryEdit replaces the raw-query draft without committing.
func ToolRawQueryEdit(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input RawQueryEditInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input RawQueryEditInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
		return applyEdit(d, input.SessionID, func(ed *editor.Editor) error {
			ed.EditRawQuery(input.Text)
			return nil
		})
	}
}

// ToolRawQueryBlur commits the raw-query draft, if there is one.
func ToolRawQueryBlur(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
		out, err := applyCommit(d, input.SessionID, func(ed *editor.Editor) (bool, error) {
			_, ok := ed.BlurRawQuery()
			return ok, nil
		})
		return nil, out, err
	}
}

// ToolEditorClose ends a session. Uncommitted drafts are discarded.
func ToolEditorClose(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorCloseOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, EditorCloseOutput, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, EditorCloseOutput{}, err
		}
		out := EditorCloseOutput{SessionID: input.SessionID}
		if v, err := s.View(); err == nil {
			out.DiscardedDraft = v.Dirty
		}
		out.Closed = d.Sessions.Close(input.SessionID)

		slog.Debug("editor closed",
			slog.String("session_id", input.SessionID),
			slog.Bool("discarded_draft", out.DiscardedDraft),
		)
		return nil, out, nil
	}
}

// ToolEditorList lists the open sessions, most recently used last.
func ToolEditorList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorListInput) (*sdkmcp.CallToolResult, EditorListOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorListInput) (*sdkmcp.CallToolResult, EditorListOutput, error) {
		sessions := d.Sessions.Sessions()
		out := EditorListOutput{Sessions: make([]EditorSessionInfo, 0, len(sessions))}
		for _, s := range sessions {
			v, err := s.View()
			if err != nil {
				continue // closed between listing and viewing
			}
			out.Sessions = append(out.Sessions, EditorSessionInfo{
				SessionID:     s.ID,
				Name:          s.Name,
				SupportsRules: v.SupportsRules,
				Dirty:         v.Dirty,
				CreatedAtMs:   s.Created.UnixMilli(),
			})
		}
		return nil, out, nil
	}
}

func applyEdit(d *Deps, id string, fn func(ed *editor.Editor) error) (*sdkmcp.CallToolResult, EditorStateOutput, error) {
	s, err := d.Session(id)
	if err != nil {
		return nil, EditorStateOutput{}, err
	}
	v, err := s.Apply(fn)
	if err != nil {
		return nil, EditorStateOutput{}, wrapSessionError(id, err)
	}
	return nil, stateOutput(v), nil
}

func applyCommit(d *Deps, id string, fn func(ed *editor.Editor) (bool, error)) (EditorStateOutput, error) {
	s, err := d.Session(id)
	if err != nil {
		return EditorStateOutput{}, err
	}
	var committed bool
	v, err := s.Apply(func(ed *editor.Editor) error {
		var err error
		committed, err = fn(ed)
		return err
	})
	if err != nil {
		return EditorStateOutput{}, wrapSessionError(id, err)
	}
	out := stateOutput(v)
	out.Committed = committed
	return out, nil
}
