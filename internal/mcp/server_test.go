package mcp

import (
	"context"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/gqlquery-mcp/internal/config"
	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/mcp/tools"
	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

type staticExecutor struct{ res preview.Result }

func (e staticExecutor) Execute(ctx context.Context, req preview.Request) (*preview.Result, error) {
	r := e.res
	return &r, nil
}

func newTestServer(t *testing.T) (*Server, *tools.Deps) {
	t.Helper()
	cfg := &config.Config{
		PreviewEndpoint:  preview.DefaultEndpoint,
		DatasourceURL:    datasource.DefaultURL,
		StoreDir:         t.TempDir(),
		SessionMax:       4,
		PreviewPathHints: 10,
	}
	st, err := store.New(cfg.StoreDir)
	require.NoError(t, err)
	sessions, err := session.NewManager(st, cfg.SessionMax)
	require.NoError(t, err)

	deps := &tools.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Preview:  staticExecutor{res: preview.Result{Kind: preview.KindStructured, Data: map[string]any{"data": map[string]any{"x": float64(1)}}}},
		Runner:   datasource.New(),
	}
	srv, err := NewServer(deps, WithBuiltinTools(), WithBuiltinPrompts())
	require.NoError(t, err)
	return srv, deps
}

func connect(t *testing.T, srv *Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
	_, err = NewServer(&tools.Deps{})
	assert.Error(t, err)
}

func TestServer_ListsBuiltinTools(t *testing.T) {
	srv, _ := newTestServer(t)
	cs := connect(t, srv)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"gql_editor_open", "gql_editor_state", "gql_rule_edit", "gql_rule_append", "gql_rule_blur",
		"gql_raw_query_edit", "gql_raw_query_blur", "gql_editor_close",
		"gql_preview_run", "gql_preview_state", "gql_query_run", "gql_health",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestServer_EditAndPreviewOverMCP(t *testing.T) {
	srv, deps := newTestServer(t)
	cs := connect(t, srv)
	ctx := context.Background()

	open, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "gql_editor_open",
		Arguments: map[string]any{"name": "demo"},
	})
	require.NoError(t, err)
	require.False(t, open.IsError)
	editor := open.StructuredContent.(map[string]any)["editor"].(map[string]any)
	id := editor["session_id"].(string)
	require.NotEmpty(t, id)

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "gql_raw_query_edit",
		Arguments: map[string]any{"session_id": id, "text": "{ x }"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "gql_raw_query_blur",
		Arguments: map[string]any{"session_id": id},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	stored, err := deps.Store.Load("demo")
	require.NoError(t, err)
	assert.Equal(t, "{ x }", stored.RawQuery)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "gql_preview_run",
		Arguments: map[string]any{"session_id": id},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, string(preview.StateStructured), res.StructuredContent.(map[string]any)["state"])
}

func TestServer_ToolErrorsAreReported(t *testing.T) {
	srv, _ := newTestServer(t)
	cs := connect(t, srv)

	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "gql_editor_state",
		Arguments: map[string]any{"session_id": "does-not-exist"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_ReadDefinitionResource(t *testing.T) {
	srv, deps := newTestServer(t)
	require.NoError(t, deps.Store.Save("countries", querydef.Definition{
		RawQuery: "{ countries { code } }",
		Rules:    []querydef.Rule{{Name: "codes", Expression: ".data.countries[].code"}},
	}))
	cs := connect(t, srv)

	res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "gqlquery://definition/countries"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, tools.MimeJSON, res.Contents[0].MIMEType)
	assert.True(t, strings.Contains(res.Contents[0].Text, `"jq": ".data.countries[].code"`))
}

func TestServer_GetPrompt(t *testing.T) {
	srv, _ := newTestServer(t)
	cs := connect(t, srv)

	res, err := cs.GetPrompt(context.Background(), &sdkmcp.GetPromptParams{
		Name:      "author_extraction_rules",
		Arguments: map[string]string{"name": "countries", "goal": "codes per continent"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*sdkmcp.TextContent).Text
	assert.Contains(t, text, `gql_editor_open(name="countries")`)
	assert.Contains(t, text, "codes per continent")
}

func TestParseResourceURI(t *testing.T) {
	params, err := parseResourceURI("gqlquery://definition/countries")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "countries"}, params)

	params, err = parseResourceURI("gqlquery://session/abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", params["session_id"])

	for _, bad := range []string{
		"https://example.com/definition/a",
		"gqlquery://",
		"gqlquery://definition/",
		"gqlquery://definition/a/b",
		"gqlquery://history/x",
	} {
		_, err := parseResourceURI(bad)
		assert.Error(t, err, bad)
	}
}
