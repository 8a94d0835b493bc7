package tools

import (
	"context"

	"github.com/usestring/gqlquery-mcp/internal/config"
	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Sessions *session.Manager
	Preview  preview.Executor
	Runner   *datasource.Runner
}

// Session resolves an open editing session.
func (d *Deps) Session(id string) (*session.Session, error) {
	if id == "" {
		return nil, ErrInvalidInput("session_id is required")
	}
	s, err := d.Sessions.Get(id)
	if err != nil {
		return nil, wrapSessionError(id, err)
	}
	return s, nil
}

// PreviewContext bounds a preview request by PREVIEW_TIMEOUT_MS. Without a
// configured timeout the parent context is returned unchanged.
func (d *Deps) PreviewContext(parent context.Context) (context.Context, context.CancelFunc) {
	if d.Config == nil || d.Config.PreviewTimeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, d.Config.PreviewTimeout)
}
