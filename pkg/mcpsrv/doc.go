// Package mcpsrv provides an extensible MCP server for editing GraphQL query
// definitions.
//
// The server exposes editing sessions (a raw query plus jq extraction rules,
// committed on blur), a live preview against a GraphQL endpoint, and execution
// of stored definitions against a data source. Users can extend it with custom
// tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server with configuration from the environment:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    Name string `json:"name"`
//	}
//
//	type MyOutput struct {
//	    Rules int `json:"rules"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "count_rules", Description: "Count stored rules"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	                def, err := d.Store.Load(in.Name)
//	                if err != nil {
//	                    return nil, MyOutput{}, err
//	                }
//	                return nil, MyOutput{Rules: len(def.Rules)}, nil
//	            }
//	        }),
//	)
//
// # Configuration
//
// Configure logging and other options:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/gqlquery-mcp.log"),
//	    mcpsrv.WithStoreDir("./queries"),
//	)
package mcpsrv
