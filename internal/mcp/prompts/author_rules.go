package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleAuthorExtractionRules implements the definition authoring workflow.
func HandleAuthorExtractionRules(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		name := ""
		goal := ""
		if args != nil {
			if v, ok := args["name"]; ok {
				name = strings.TrimSpace(v)
			}
			if v, ok := args["goal"]; ok {
				goal = strings.TrimSpace(v)
			}
		}
		nameArg := "\"<name>\""
		if name != "" {
			nameArg = fmt.Sprintf("%q", name)
		}

		var sb strings.Builder

		sb.WriteString("# Author a GraphQL Query Definition\n\n")
		sb.WriteString("You are building a query definition: one raw GraphQL query plus an ordered list of ")
		sb.WriteString("extraction rules. Each rule has a name and a jq expression; running the definition ")
		sb.WriteString("produces one table (frame) per named rule.\n\n")
		if goal != "" {
			sb.WriteString(fmt.Sprintf("**Goal**: %s\n\n", goal))
		}

		sb.WriteString("## Environment\n\n")
		sb.WriteString(fmt.Sprintf("- Preview endpoint: `%s` (used by gql_preview_run)\n", cfg.PreviewEndpoint))
		sb.WriteString(fmt.Sprintf("- Data source: `%s` (used by gql_query_run)\n", cfg.DatasourceURL))
		sb.WriteString(fmt.Sprintf("- Definitions are stored as YAML under `%s`\n\n", cfg.StoreDir))

		sb.WriteString("## Commit Model\n\n")
		sb.WriteString("Edits are drafts. Nothing is saved until the field is blurred:\n")
		sb.WriteString("- `gql_raw_query_edit` then `gql_raw_query_blur` saves the query and keeps the saved rules\n")
		sb.WriteString("- `gql_rule_edit` / `gql_rule_append` then `gql_rule_blur` saves the whole rule list and keeps the saved query\n")
		sb.WriteString("- Closing a session discards drafts that were not blurred\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString(fmt.Sprintf("1. **Open** -- `gql_editor_open(name=%s)`. Note `found` and the existing rows.\n\n", nameArg))
		sb.WriteString("2. **Write the query** -- `gql_raw_query_edit(text=...)`, then check `outline`:\n")
		sb.WriteString("   - `balanced: false` means a brace is missing\n")
		sb.WriteString("   - `operations[].fields` are the top-level keys the response will have under `.data`\n\n")
		sb.WriteString("3. **Preview** -- `gql_preview_run`. Read `shape` and `paths`: each path is a jq path to a leaf, ")
		sb.WriteString("e.g. `.data.countries[].name`. If `kind` is `text` the endpoint did not return JSON; check `status_code`.\n\n")
		sb.WriteString("4. **Commit the query** -- `gql_raw_query_blur` once the preview looks right.\n\n")
		sb.WriteString("5. **Add rules** -- for each table:\n")
		sb.WriteString("   - `gql_rule_append`, then `gql_rule_edit(index, field=\"name\", value=...)` and `gql_rule_edit(index, field=\"expression\", value=...)`\n")
		sb.WriteString("   - Emit one flat object per row: `.data.countries[] | {code, name, capital}`\n")
		sb.WriteString("   - Reach into nested objects explicitly: `.data.countries[] | {code, continent: .continent.name}`\n")
		sb.WriteString("   - A scalar stream lands in a single `value` column: `.data.countries[].code`\n")
		sb.WriteString("   - Check `rule_issues` in the response for expressions that do not compile\n\n")
		sb.WriteString("6. **Try the rules** -- `gql_rules_try` frames the displayed preview with the draft rows. Fix errors before committing.\n\n")
		sb.WriteString("7. **Commit the rules** -- `gql_rule_blur`. Check `last_commit_error` in the editor state.\n\n")
		sb.WriteString(fmt.Sprintf("8. **Run** -- `gql_query_run(name=%s)` executes against the data source and returns the frames.\n\n", nameArg))

		sb.WriteString("## Framing Rules\n\n")
		sb.WriteString("| Emitted value | Result |\n")
		sb.WriteString("|---------------|--------|\n")
		sb.WriteString("| object | one column per key |\n")
		sb.WriteString("| array | each element framed in turn |\n")
		sb.WriteString("| string / number | appended to the `value` column |\n")
		sb.WriteString("| null | skipped (null object members become \"\") |\n")
		sb.WriteString("| boolean | error: unrecognized type |\n")
		sb.WriteString("| nested object or array inside an object | error: unsupported operation |\n\n")
		sb.WriteString("Every value a column receives must have the same type. Convert booleans with `tostring` or `if . then 1 else 0 end`.\n\n")

		sb.WriteString("## Constraints\n\n")
		sb.WriteString("- Rules with an empty name are kept in the definition but never produce a frame\n")
		sb.WriteString("- Rule names are not required to be unique; give each a distinct name anyway\n")
		sb.WriteString("- Preview a large query with `gql_preview_state(full=false)`; fetch `full=true` only when the trimmed view hides what you need\n")
		sb.WriteString("- STOP when `gql_query_run` returns the tables the goal asks for\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for authoring a GraphQL query definition with extraction rules",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
