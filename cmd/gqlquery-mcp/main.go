// gqlquery-mcp hosts the GraphQL query editor as an MCP server and runs
// stored query definitions from the command line.
//
// Usage:
//
//	gqlquery-mcp [serve]
//	gqlquery-mcp run [name...] [--pretty]
//	gqlquery-mcp list
//
// Configuration comes from the environment and an optional .env file
// (see internal/config); the persistent flags override it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/usestring/gqlquery-mcp/internal/mcp"
	"github.com/usestring/gqlquery-mcp/pkg/mcpsrv"
)

var (
	logLevel string
	logFile  string
	storeDir string
)

var rootCmd = &cobra.Command{
	Use:   "gqlquery-mcp",
	Short: "GraphQL query editor over MCP",
	Long: `gqlquery-mcp lets an MCP client author GraphQL query definitions with jq
extraction rules, preview them against a live endpoint and run them through
a backend data source.`,
	// Without a subcommand the binary behaves like "serve", which is what MCP
	// client configurations invoke.
	RunE:         runServe,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: LOG_FILE, stderr when empty)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "Definition directory (default: QUERY_STORE_DIR)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.Version = mcp.Version
}

// serverOptions turns the persistent flags into server options.
func serverOptions() []mcpsrv.Option {
	var opts []mcpsrv.Option
	if logLevel != "" {
		opts = append(opts, mcpsrv.WithLogLevel(logLevel))
	}
	if logFile != "" {
		opts = append(opts, mcpsrv.WithLogFile(logFile))
	}
	if storeDir != "" {
		opts = append(opts, mcpsrv.WithStoreDir(storeDir))
	}
	return opts
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
