package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleToolUsageGuide serves the tool reference.
func HandleToolUsageGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Efficient Tool Usage Guide\n\n")

		sb.WriteString("## Which Tool\n\n")
		sb.WriteString("| Goal | Tool |\n")
		sb.WriteString("|------|------|\n")
		sb.WriteString("| Start editing a definition | `gql_editor_open` |\n")
		sb.WriteString("| See drafts, saved definition and outline | `gql_editor_state` |\n")
		sb.WriteString("| Change the query | `gql_raw_query_edit` + `gql_raw_query_blur` |\n")
		sb.WriteString("| Change the rules | `gql_rule_append` / `gql_rule_edit` + `gql_rule_blur` |\n")
		sb.WriteString("| See the live response | `gql_preview_run`, then `gql_preview_state` |\n")
		sb.WriteString("| Check rules against the preview | `gql_rules_try` |\n")
		sb.WriteString("| Produce tables from saved definitions | `gql_query_run` |\n")
		sb.WriteString("| Saved definitions | `gql_definitions_list`, resource `gqlquery://definition/{name}` |\n\n")

		sb.WriteString("## Commit Semantics\n\n")
		sb.WriteString("- A rule blur saves the full rule list, blank and unnamed rows included, with the last *saved* query\n")
		sb.WriteString("- A query blur saves the draft query with the last *saved* rules\n")
		sb.WriteString("- A query blur with no draft is a no-op (`committed: false`)\n")
		sb.WriteString("- A failed save does not roll back the editor; it shows up as `last_commit_error`\n\n")

		sb.WriteString("## Preview (Token-Optimized)\n\n")
		sb.WriteString("- Responses are trimmed by default: long arrays end with a \"... (N more items)\" marker, long strings with \"... (N more chars)\"\n")
		sb.WriteString("- `shape` is a JSON Schema of the whole response, untrimmed\n")
		sb.WriteString("- `paths` lists jq paths to leaves; copy them into rule expressions\n")
		sb.WriteString("- `async=true` returns at once with the invocation number; poll `gql_preview_state`\n")
		sb.WriteString("- Responses are shown in the order they arrive. `stale: true` means a newer invocation than `shown_invocation` is still pending\n")
		sb.WriteString("- A transport failure returns the pane to `idle` with `error` set; HTTP error statuses are still displayed as responses\n\n")

		sb.WriteString("## Endpoints\n\n")
		sb.WriteString(fmt.Sprintf("- Preview posts to `%s`\n", cfg.PreviewEndpoint))
		sb.WriteString(fmt.Sprintf("- `gql_query_run` sends GET `?query=` to `%s`; `gql_health` checks it\n", cfg.DatasourceURL))

		return &sdkmcp.GetPromptResult{
			Description: "Reference for the gqlquery tools",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
