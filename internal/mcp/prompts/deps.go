// Package prompts contains MCP prompt implementations for gqlquery-mcp.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	PreviewEndpoint string
	DatasourceURL   string
	StoreDir        string
}
