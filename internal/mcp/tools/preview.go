package tools

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/pkg/editor"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
	"github.com/usestring/gqlquery-mcp/pkg/types"
)

// PreviewRunInput is the input for gql_preview_run.
type PreviewRunInput struct {
	SessionID     string `json:"session_id" jsonschema:"required,Session ID returned by gql_editor_open"`
	Variables     string `json:"variables,omitempty" jsonschema:"Query variables as a JSON object"`
	OperationName string `json:"operation_name,omitempty" jsonschema:"Operation to run when the document defines several"`
	Async         bool   `json:"async,omitempty" jsonschema:"Return immediately and poll gql_preview_state (default: false)"`
}

// PreviewStateInput is the input for gql_preview_state.
type PreviewStateInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session ID returned by gql_editor_open"`
	Full      bool   `json:"full,omitempty" jsonschema:"Return the response without trimming arrays and strings (default: false)"`
	MaxPaths  int    `json:"max_paths,omitempty" jsonschema:"Max jq path hints to return (default: PREVIEW_PATH_HINTS)"`
}

// PreviewOutput describes what the preview pane displays.
type PreviewOutput struct {
	SessionID   string             `json:"session_id"`
	Invocation  uint64             `json:"invocation,omitempty"` // started by this call
	State       preview.State      `json:"state"`
	Kind        preview.Kind       `json:"kind,omitempty"`
	Data        any                `json:"data,omitempty"`
	Text        string             `json:"text,omitempty"`
	StatusCode  int                `json:"status_code,omitempty"`
	ContentType string             `json:"content_type,omitempty"`
	Category    preview.Category   `json:"category,omitempty"`
	DurationMs  int64              `json:"duration_ms,omitempty"`
	Shape       any                `json:"shape,omitempty"`
	Paths       []preview.PathHint `json:"paths,omitzero"`
	Markup      *preview.Markup    `json:"markup,omitempty"`
	Error       string             `json:"error,omitempty"`
	Shown       uint64             `json:"shown_invocation"`
	Issued      uint64             `json:"issued_invocation"`
	InFlight    int                `json:"in_flight"`
	Stale       bool               `json:"stale"`
	Hints       []string           `json:"hints,omitzero"`
}

// ToolPreviewRun sends the session's current raw query to the preview
// endpoint.
func ToolPreviewRun(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input PreviewRunInput) (*sdkmcp.CallToolResult, PreviewOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input PreviewRunInput) (*sdkmcp.CallToolResult, PreviewOutput, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, PreviewOutput{}, err
		}

		var rawQuery string
		if err := s.Do(func(ed *editor.Editor) error {
			rawQuery = ed.RawQuery()
			return nil
		}); err != nil {
			return nil, PreviewOutput{}, wrapSessionError(input.SessionID, err)
		}

		gqlReq, err := preview.BuildRequest(rawQuery, input.Variables, input.OperationName)
		if err != nil {
			return nil, PreviewOutput{}, ErrInvalidInput(err.Error())
		}

		insp := s.Inspector()
		if input.Async {
			seq := insp.Begin()
			go runDetached(d, s, seq, gqlReq)
			out, err := previewOutput(d, s, false, 0)
			out.Invocation = seq
			return nil, out, err
		}

		pctx, cancel := d.PreviewContext(ctx)
		defer cancel()
		seq, _, runErr := insp.Run(pctx, d.Preview, gqlReq)
		if runErr != nil {
			return nil, PreviewOutput{}, WrapUpstreamError("preview endpoint", runErr)
		}
		out, err := previewOutput(d, s, false, 0)
		out.Invocation = seq
		return nil, out, err
	}
}

// runDetached completes an async invocation. It is not tied to the tool
// call's context, which ends as soon as the call returns.
func runDetached(d *Deps, s *session.Session, seq uint64, req preview.Request) {
	ctx, cancel := d.PreviewContext(context.Background())
	defer cancel()

	res, err := d.Preview.Execute(ctx, req)
	if err != nil {
		s.Inspector().Fail(seq, err)
		slog.Debug("async preview failed",
			slog.String("session_id", s.ID),
			slog.Uint64("invocation", seq),
			slog.String("error", err.Error()),
		)
		return
	}
	s.Inspector().Resolve(seq, res)
}

// ToolPreviewState returns what the preview pane currently displays.
func ToolPreviewState(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input PreviewStateInput) (*sdkmcp.CallToolResult, PreviewOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input PreviewStateInput) (*sdkmcp.CallToolResult, PreviewOutput, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, PreviewOutput{}, err
		}
		out, err := previewOutput(d, s, input.Full, input.MaxPaths)
		return nil, out, err
	}
}

func previewOutput(d *Deps, s *session.Session, full bool, maxPaths int) (PreviewOutput, error) {
	snap := s.Inspector().Snapshot()
	out := PreviewOutput{
		SessionID: s.ID,
		State:     snap.State,
		Error:     snap.Error,
		Shown:     snap.Shown,
		Issued:    snap.Issued,
		InFlight:  snap.InFlight,
		Stale:     snap.Stale,
	}

	switch {
	case snap.State == preview.StateAwaiting:
		out.Hints = append(out.Hints, "A response is pending. Call gql_preview_state again.")
	case snap.Error != "":
		out.Hints = append(out.Hints, "The last preview failed before a response arrived.")
	case snap.Result == nil:
		out.Hints = append(out.Hints, "Nothing previewed yet. Call gql_preview_run.")
	}
	if snap.Stale {
		out.Hints = append(out.Hints, "A newer invocation than the one shown is still in flight.")
	}

	res := snap.Result
	if res == nil {
		return out, nil
	}
	out.Kind = res.Kind
	out.StatusCode = res.StatusCode
	out.ContentType = res.ContentType
	out.Category = res.Category
	out.DurationMs = res.DurationMs

	limits := d.Config.CompactLimits()
	if full {
		limits = preview.Limits{}
	}
	if res.Kind == preview.KindText {
		out.Text, _ = preview.Compact(res, limits).(string)
		if m := preview.SummarizeMarkup(res, limits.MaxStringLen); m != nil {
			out.Markup = m
			out.Hints = append(out.Hints, "The endpoint answered with markup instead of JSON. Check the endpoint URL and credentials.")
		}
		return out, nil
	}
	out.Data = preview.Compact(res, limits)

	if maxPaths <= 0 {
		maxPaths = d.Config.PreviewPathHints
	}
	out.Paths = preview.Paths(res, maxPaths)

	if shape := preview.Shape(res); shape != nil {
		v, err := types.ToAny(shape)
		if err != nil {
			return out, err
		}
		out.Shape = v
	}
	return out, nil
}
