package tools

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usestring/gqlquery-mcp/internal/config"
	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
)

// fakeExecutor returns canned results. With gate set, Execute blocks until a
// value is sent on it.
type fakeExecutor struct {
	mu       sync.Mutex
	requests []preview.Request
	result   *preview.Result
	err      error
	gate     chan struct{}
}

func (f *fakeExecutor) Execute(ctx context.Context, req preview.Request) (*preview.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	return &res, nil
}

func (f *fakeExecutor) Requests() []preview.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]preview.Request(nil), f.requests...)
}

func structuredResult(data any) *preview.Result {
	return &preview.Result{
		Kind:        preview.KindStructured,
		Data:        data,
		StatusCode:  200,
		ContentType: "application/json",
		Category:    preview.CategoryJSON,
	}
}

func newTestDeps(t *testing.T, ex preview.Executor, datasourceURL string) *Deps {
	t.Helper()

	cfg := &config.Config{
		PreviewPathHints:     50,
		CompactMaxArrayItems: preview.DefaultLimits.MaxArrayItems,
		CompactMaxStringLen:  preview.DefaultLimits.MaxStringLen,
		DatasourceURL:        datasourceURL,
		QueryWorkers:         2,
		StoreDir:             t.TempDir(),
		SessionMax:           8,
	}
	st, err := store.New(cfg.StoreDir)
	require.NoError(t, err)
	sessions, err := session.NewManager(st, cfg.SessionMax)
	require.NoError(t, err)

	if datasourceURL == "" {
		datasourceURL = datasource.DefaultURL
	}
	return &Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Preview:  ex,
		Runner:   datasource.New(datasource.WithURL(datasourceURL), datasource.WithWorkers(cfg.QueryWorkers)),
	}
}

func openSession(t *testing.T, d *Deps, name string) string {
	t.Helper()
	_, out, err := ToolEditorOpen(d)(context.Background(), nil, EditorOpenInput{Name: name})
	require.NoError(t, err)
	return out.Editor.SessionID
}
