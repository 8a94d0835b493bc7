package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoggingMiddleware returns middleware that logs every incoming method call.
// Tool calls are tagged with the tool name and, when the arguments carry one,
// the editing session they act on.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := append(callAttrs(req),
				slog.String("method", method),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			level, msg := slog.LevelInfo, "method call completed"
			switch {
			case err != nil:
				attrs = append(attrs, slog.String("error", err.Error()))
				level, msg = slog.LevelError, "method call failed"
			case isToolError(result):
				level, msg = slog.LevelWarn, "tool reported an error"
			}
			slog.LogAttrs(ctx, level, msg, attrs...)
			return result, err
		}
	}
}

func callAttrs(req sdkmcp.Request) []slog.Attr {
	call, ok := req.(*sdkmcp.CallToolRequest)
	if !ok || call.Params == nil {
		return nil
	}
	attrs := []slog.Attr{slog.String("tool", call.Params.Name)}

	var args struct {
		SessionID string `json:"session_id"`
	}
	if len(call.Params.Arguments) > 0 && json.Unmarshal(call.Params.Arguments, &args) == nil && args.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", args.SessionID))
	}
	return attrs
}

func isToolError(result sdkmcp.Result) bool {
	res, ok := result.(*sdkmcp.CallToolResult)
	return ok && res != nil && res.IsError
}
