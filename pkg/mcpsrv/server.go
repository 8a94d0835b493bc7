package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/gqlquery-mcp/internal/config"
	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/logging"
	"github.com/usestring/gqlquery-mcp/internal/mcp"
	"github.com/usestring/gqlquery-mcp/internal/mcp/tools"
	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
)

// Server is the gqlquery MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with the builtin tools, prompts and
// resources. Configuration is read from the environment (see internal/config);
// functional options override it.
func NewServer(opts ...Option) (*Server, error) {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.config == nil {
		cfg.config = config.Load()
	}
	if cfg.storeDir != "" {
		cfg.config.StoreDir = cfg.storeDir
	}

	// Setup logging
	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		Format:     cfg.config.LogFormat,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	if cfg.config.EnvFile != "" {
		slog.Debug("loaded env file", slog.String("path", cfg.config.EnvFile))
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		_ = logCleanup()
		return nil, err
	}

	toolDeps := &tools.Deps{
		Config:   deps.Config,
		Store:    deps.Store,
		Sessions: deps.Sessions,
		Preview:  deps.Preview,
		Runner:   deps.Runner,
	}

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	// Add custom extension registration callbacks
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

func buildDeps(cfg *serverConfig) (*Deps, error) {
	c := cfg.config

	st, err := store.New(c.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition store: %w", err)
	}
	sessions, err := session.NewManager(st, c.SessionMax)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	executor := cfg.executor
	if executor == nil {
		hopts := []preview.Option{preview.WithEndpoint(c.PreviewEndpoint)}
		if c.PreviewOrigin != "" {
			hopts = append(hopts, preview.WithOrigin(c.PreviewOrigin))
		}
		if c.PreviewAuthHeader != "" {
			hopts = append(hopts, preview.WithCredentialHeader("Authorization", c.PreviewAuthHeader))
		}
		if cfg.httpClient != nil {
			hopts = append(hopts, preview.WithHTTPClient(cfg.httpClient))
		}
		executor = preview.New(hopts...)
	}

	ropts := []datasource.Option{
		datasource.WithURL(c.DatasourceURL),
		datasource.WithTimeout(c.DatasourceTimeout),
		datasource.WithWorkers(c.QueryWorkers),
		datasource.WithHealthProbe(c.HealthProbe),
	}
	if cfg.httpClient != nil {
		ropts = append(ropts, datasource.WithHTTPClient(withTimeout(cfg.httpClient, c.DatasourceTimeout)))
	}

	return &Deps{
		Config:   c,
		Store:    st,
		Sessions: sessions,
		Preview:  executor,
		Runner:   datasource.New(ropts...),
	}, nil
}

// withTimeout returns a copy of c bounded by d unless c already has a
// timeout. The preview harness keeps using c itself, without a timeout.
func withTimeout(c *http.Client, d time.Duration) *http.Client {
	cp := *c
	if cp.Timeout == 0 {
		cp.Timeout = d
	}
	return &cp
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("serving query editor",
		slog.String("store_dir", s.deps.Config.StoreDir),
		slog.String("preview_endpoint", s.deps.Config.PreviewEndpoint),
		slog.String("datasource_url", s.deps.Config.DatasourceURL),
	)
	return s.internal.Run(ctx)
}

// Close discards open sessions and releases logging resources.
func (s *Server) Close() error {
	s.deps.Sessions.Purge()
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}
