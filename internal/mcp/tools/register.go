package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Editor sessions
	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_editor_open",
		Description: "Open an editing session for a named query definition. Loads the stored definition (or starts empty) and returns a session_id plus the editor state: raw query, rule rows, outline of operations and top-level fields.",
	}, ToolEditorOpen(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_editor_state",
		Description: "Get the current state of an editing session, including uncommitted drafts, the committed definition, rule expressions that do not compile, and the last persistence error.",
	}, ToolEditorState(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_editor_list",
		Description: "List open editing sessions.",
	}, ToolEditorList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_editor_close",
		Description: "Close an editing session. Uncommitted drafts are discarded; committed definitions stay stored.",
	}, ToolEditorClose(d))

	// Extraction rules
	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_rule_edit",
		Description: "Set the name or expression of one rule row. The change stays local until gql_rule_blur commits the rule list. Expressions are jq programs applied to the full response document (e.g. '.data.countries[] | {code, name}').",
	}, ToolRuleEdit(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_rule_append",
		Description: "Append a blank rule row. Nothing is committed until gql_rule_blur.",
	}, ToolRuleAppend(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_rule_blur",
		Description: "Commit the whole rule list (including unnamed rows) and persist the definition. The committed raw query is kept as is, even if a raw query draft is pending.",
	}, ToolRuleBlur(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_rules_try",
		Description: "Frame the displayed preview response with the current rule rows, drafts included, to check expressions before committing. Requires a structured preview response.",
	}, ToolRulesTry(d))

	// Raw query
	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_raw_query_edit",
		Description: "Replace the raw GraphQL query draft. The change stays local until gql_raw_query_blur commits it.",
	}, ToolRawQueryEdit(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_raw_query_blur",
		Description: "Commit the raw query draft and persist the definition. Committed rules are kept. No-op when there is no draft.",
	}, ToolRawQueryBlur(d))

	// Preview
	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_preview_run",
		Description: "Send the displayed raw query (draft included) to the preview GraphQL endpoint and return what the preview pane shows: the response (arrays and long strings trimmed), its shape as JSON Schema, and jq paths to its leaves. With async=true, returns at once; poll gql_preview_state.",
	}, ToolPreviewRun(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_preview_state",
		Description: "Get what the preview pane displays: idle, awaiting a response, or the latest resolved response. 'stale' is true when a newer invocation than the one shown is still in flight.",
	}, ToolPreviewState(d))

	// Stored definitions and the data source
	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_definitions_list",
		Description: "List stored query definitions. Each is also readable as resource gqlquery://definition/{name}.",
	}, ToolDefinitionsList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_definition_delete",
		Description: "Delete a stored query definition.",
	}, ToolDefinitionDelete(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_query_run",
		Description: "Run stored definitions against the data source and return one frame per named rule. A rule's columns come from the keys of the objects its expression emits; scalar results land in a 'value' column. Rules without a name are skipped. Definitions run concurrently and fail independently.",
	}, ToolQueryRun(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "gql_health",
		Description: "Check that the data source URL is valid and, when probing is enabled, reachable.",
	}, ToolHealth(d))
}
