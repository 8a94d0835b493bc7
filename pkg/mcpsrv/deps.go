package mcpsrv

import (
	"github.com/usestring/gqlquery-mcp/internal/config"
	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Sessions *session.Manager
	Preview  preview.Executor
	Runner   *datasource.Runner
}
