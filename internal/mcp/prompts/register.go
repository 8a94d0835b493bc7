package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "author_extraction_rules",
		Description: "RECOMMENDED: Write a GraphQL query and the jq extraction rules that turn its response into tables. Start here - walks through editing, previewing and committing a definition.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "name",
				Description: "Definition to create or edit (e.g., 'countries')",
				Required:    false,
			},
			{
				Name:        "goal",
				Description: "What the tables should contain (e.g., 'country code, name and capital per continent')",
				Required:    false,
			},
		},
	}, HandleAuthorExtractionRules(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "tool_usage_guide",
		Description: "Reference for the editor, preview and query tools: commit semantics, token-cheap calls and common mistakes.",
	}, HandleToolUsageGuide(cfg))
}
