package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/extract"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/editor"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

// QueryRunInput is the input for gql_query_run.
type QueryRunInput struct {
	Name  string   `json:"name,omitempty" jsonschema:"Stored definition to run"`
	Names []string `json:"names,omitempty" jsonschema:"Several stored definitions to run. With neither name nor names, every stored definition runs"`
}

// QueryRunOutput is the output for gql_query_run.
type QueryRunOutput struct {
	Results    []datasource.Result `json:"results,omitzero"`
	LoadErrors []LoadError         `json:"load_errors,omitzero"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
}

// LoadError reports a definition that could not be read from the store.
type LoadError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RulesTryInput is the input for gql_rules_try.
type RulesTryInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session ID returned by gql_editor_open"`
}

// RulesTryOutput is the output for gql_rules_try.
type RulesTryOutput struct {
	SessionID string          `json:"session_id"`
	Shown     uint64          `json:"shown_invocation"`
	Frames    []extract.Frame `json:"frames,omitzero"`
	Errors    []string        `json:"errors,omitzero"`
}

// DefinitionsListInput is the input for gql_definitions_list.
type DefinitionsListInput struct{}

// DefinitionsListOutput is the output for gql_definitions_list.
type DefinitionsListOutput struct {
	Dir         string   `json:"dir"`
	Definitions []string `json:"definitions,omitzero"`
}

// DefinitionDeleteInput is the input for gql_definition_delete.
type DefinitionDeleteInput struct {
	Name string `json:"name" jsonschema:"required,Definition name"`
}

// DefinitionDeleteOutput is the output for gql_definition_delete.
type DefinitionDeleteOutput struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// HealthInput is the input for gql_health.
type HealthInput struct{}

// ToolQueryRun executes stored definitions against the data source and frames
// their responses. Definitions run concurrently; one failure does not stop the
// others.
func ToolQueryRun(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryRunInput) (*sdkmcp.CallToolResult, QueryRunOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryRunInput) (*sdkmcp.CallToolResult, QueryRunOutput, error) {
		names := input.Names
		if input.Name != "" {
			names = append([]string{input.Name}, names...)
		}
		defs, failed, err := loadDefinitions(d, names)
		if err != nil {
			return nil, QueryRunOutput{}, err
		}
		if len(defs) == 0 && len(failed) == 0 {
			return nil, QueryRunOutput{}, ErrInvalidInput("no stored definitions to run")
		}

		out := QueryRunOutput{
			Results:    d.Runner.RunAll(ctx, defs),
			LoadErrors: make([]LoadError, 0, len(failed)),
		}
		for _, r := range out.Results {
			if r.Err != nil {
				out.Failed++
			} else {
				out.Succeeded++
			}
		}
		for name, ferr := range failed {
			out.LoadErrors = append(out.LoadErrors, LoadError{Name: name, Message: ferr.Error()})
		}
		sort.Slice(out.LoadErrors, func(i, j int) bool { return out.LoadErrors[i].Name < out.LoadErrors[j].Name })
		out.Failed += len(out.LoadErrors)
		return nil, out, nil
	}
}

func loadDefinitions(d *Deps, names []string) (map[string]querydef.Definition, map[string]error, error) {
	if len(names) == 0 {
		defs, failed, err := d.Store.LoadAll()
		if err != nil {
			return nil, nil, WrapStoreError("", err)
		}
		return defs, failed, nil
	}

	defs := make(map[string]querydef.Definition, len(names))
	failed := make(map[string]error)
	for _, name := range names {
		def, err := d.Store.Load(name)
		if err != nil {
			failed[name] = WrapStoreError(name, err)
			continue
		}
		defs[name] = def
	}
	return defs, failed, nil
}

// ToolRulesTry frames the displayed preview response with the session's
// current rule rows, drafts included. Nothing is committed or sent.
func ToolRulesTry(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input RulesTryInput) (*sdkmcp.CallToolResult, RulesTryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input RulesTryInput) (*sdkmcp.CallToolResult, RulesTryOutput, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, RulesTryOutput{}, err
		}

		var rows []querydef.Rule
		if err := s.Do(func(ed *editor.Editor) error {
			if !ed.SupportsRules() {
				return editor.ErrRulesDisabled
			}
			rows = ed.Rows()
			return nil
		}); err != nil {
			return nil, RulesTryOutput{}, wrapSessionError(input.SessionID, err)
		}

		snap := s.Inspector().Snapshot()
		if snap.Result == nil || snap.Result.Kind != preview.KindStructured {
			return nil, RulesTryOutput{}, ErrInvalidInput("no structured preview response is displayed; run gql_preview_run first")
		}

		out := RulesTryOutput{
			SessionID: input.SessionID,
			Shown:     snap.Shown,
			Frames:    make([]extract.Frame, 0, len(rows)),
		}
		for i, rule := range rows {
			if rule.Name == "" || rule.Expression == "" {
				continue
			}
			frame, err := extract.FrameRule(rule, snap.Result.Data)
			if err != nil {
				out.Errors = append(out.Errors, fmt.Sprintf("row %d (%s): %v", i, rule.Name, err))
				continue
			}
			out.Frames = append(out.Frames, frame)
		}
		return nil, out, nil
	}
}

// ToolDefinitionsList lists the stored definitions.
func ToolDefinitionsList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DefinitionsListInput) (*sdkmcp.CallToolResult, DefinitionsListOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DefinitionsListInput) (*sdkmcp.CallToolResult, DefinitionsListOutput, error) {
		names, err := d.Store.List()
		if err != nil {
			return nil, DefinitionsListOutput{}, WrapStoreError("", err)
		}
		return nil, DefinitionsListOutput{Dir: d.Store.Dir(), Definitions: names}, nil
	}
}

// ToolDefinitionDelete removes a stored definition. Open sessions keep their
// in-memory copy and recreate the document on their next commit.
func ToolDefinitionDelete(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DefinitionDeleteInput) (*sdkmcp.CallToolResult, DefinitionDeleteOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DefinitionDeleteInput) (*sdkmcp.CallToolResult, DefinitionDeleteOutput, error) {
		if err := d.Store.Delete(input.Name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, DefinitionDeleteOutput{Name: input.Name}, nil
			}
			return nil, DefinitionDeleteOutput{}, WrapStoreError(input.Name, err)
		}
		return nil, DefinitionDeleteOutput{Name: input.Name, Deleted: true}, nil
	}
}

// ToolHealth reports whether the data source is usable.
func ToolHealth(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input HealthInput) (*sdkmcp.CallToolResult, datasource.Health, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input HealthInput) (*sdkmcp.CallToolResult, datasource.Health, error) {
		return nil, d.Runner.CheckHealth(ctx), nil
	}
}
