package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/usestring/gqlquery-mcp/pkg/mcpsrv"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the editor, preview and
query tools. stdout belongs to the protocol; logs go to stderr or LOG_FILE.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server, err := mcpsrv.NewServer(serverOptions()...)
	if err != nil {
		return fmt.Errorf("create MCP server: %w", err)
	}
	defer server.Close()

	slog.Info("starting gqlquery MCP server on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
