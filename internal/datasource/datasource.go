// Package datasource runs persisted query definitions against a GraphQL
// backend and frames the responses with their extraction rules.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/gqlquery-mcp/internal/extract"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

const (
	// DefaultURL is the backend URL used when none is configured.
	DefaultURL = "http://localhost:9999"
	// DefaultTimeout bounds a single backend request.
	DefaultTimeout = 5 * time.Minute
	// DefaultWorkers bounds concurrent definitions in RunAll.
	DefaultWorkers = 4

	// HealthyMessage is reported by a passing health check.
	HealthyMessage = "Data source is working"
)

// ErrNotObject is returned when the backend answers with JSON that is not an
// object.
var ErrNotObject = errors.New("response is not a JSON object")

// HTTPError is a non-2xx backend response whose body was not a JSON object.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// Runner executes definitions against a single backend URL.
type Runner struct {
	baseURL    string
	httpClient *http.Client
	workers    int
	probe      bool
}

// Option is a functional option for configuring the Runner.
type Option func(*Runner)

// WithURL sets the backend URL.
func WithURL(u string) Option {
	return func(r *Runner) {
		r.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client. It replaces the default client
// and its timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) {
		r.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.httpClient = &http.Client{Timeout: d}
	}
}

// WithWorkers bounds how many definitions RunAll executes at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithHealthProbe makes CheckHealth issue a request to the backend instead of
// only validating the URL.
func WithHealthProbe(enabled bool) Option {
	return func(r *Runner) {
		r.probe = enabled
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		baseURL:    DefaultURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// URL returns the backend URL.
func (r *Runner) URL() string {
	return r.baseURL
}

// Fetch sends rawQuery to the backend as GET ?query=<text> and decodes the
// JSON object it answers with.
func (r *Runner) Fetch(ctx context.Context, rawQuery string) (map[string]any, error) {
	start := time.Now()

	u, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}
	u.RawQuery = url.Values{"query": []string{rawQuery}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Debug("backend request failed",
			slog.String("url", r.baseURL),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	slog.Debug("backend request completed",
		slog.String("url", r.baseURL),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		if resp.StatusCode >= 400 {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
		}
		if err == nil {
			err = ErrNotObject
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return doc, nil
}

// Run fetches def's query and frames the response with its named rules.
func (r *Runner) Run(ctx context.Context, def querydef.Definition) ([]extract.Frame, error) {
	doc, err := r.Fetch(ctx, def.RawQuery)
	if err != nil {
		return nil, err
	}
	return extract.FrameDefinition(def, doc)
}

// Result is the outcome of one definition in RunAll.
type Result struct {
	Name       string          `json:"name"`
	Frames     []extract.Frame `json:"frames,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMs int64           `json:"duration_ms"`

	Err error `json:"-"`
}

// RunAll executes definitions concurrently, bounded by the worker limit.
// Failures are isolated: each definition gets its own Result, sorted by name.
func (r *Runner) RunAll(ctx context.Context, defs map[string]querydef.Definition) []Result {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, len(names))

	// Per-definition errors are recorded, never returned, so the group context
	// is only cancelled by the caller.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, name := range names {
		g.Go(func() error {
			start := time.Now()
			frames, err := r.Run(gctx, defs[name])
			res := Result{Name: name, Frames: frames, DurationMs: time.Since(start).Milliseconds()}
			if err != nil {
				res.Err = err
				res.Error = err.Error()
				slog.Debug("definition failed",
					slog.String("name", name),
					slog.String("error", err.Error()),
				)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// HealthStatus is the outcome of a health check.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthError HealthStatus = "error"
)

// Health is the result of CheckHealth.
type Health struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message"`
	URL     string       `json:"url"`
}

// CheckHealth validates the backend URL and, with the probe enabled, sends an
// empty query to it. Any HTTP response counts as reachable.
func (r *Runner) CheckHealth(ctx context.Context) Health {
	h := Health{URL: r.baseURL}

	u, err := url.Parse(r.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		h.Status = HealthError
		h.Message = fmt.Sprintf("invalid data source URL %q", r.baseURL)
		return h
	}

	if r.probe {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			h.Status = HealthError
			h.Message = fmt.Sprintf("creating probe request: %v", err)
			return h
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			h.Status = HealthError
			h.Message = fmt.Sprintf("data source unreachable: %v", err)
			return h
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	h.Status = HealthOK
	h.Message = HealthyMessage
	return h
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
