// Package preview sends the query under edit to a GraphQL endpoint and
// normalizes the response for interactive inspection.
//
// The harness is presentation-only. It does not apply extraction rules, does
// not cache or deduplicate requests, and has no timeout or cancellation of its
// own: callers needing bounded latency pass a context with a deadline.
//
// # Quick Start
//
//	h := preview.New(preview.WithEndpoint("https://countries.trevorblades.com/"))
//	req, _ := preview.BuildRequest("{ countries { name } }", "", "")
//	res, err := h.Execute(ctx, req)
//	if err != nil {
//	    // transport failure: endpoint unreachable, context cancelled, ...
//	}
//	fmt.Println(res.Kind, res.Value())
//
// # Credentials
//
// Credential headers and cookies supplied by the host are opaque to this
// package. They are attached only when the endpoint shares the configured
// origin (scheme, host and port), mirroring a same-origin credentials policy.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the public GraphQL endpoint used when none is configured.
const DefaultEndpoint = "https://countries.trevorblades.com/"

// Executor runs a single preview request.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// Harness posts preview requests to a fixed endpoint.
type Harness struct {
	endpoint    string
	origin      string
	httpClient  *http.Client
	credHeaders http.Header
	cookies     []*http.Cookie
}

// Option is a functional option for configuring the Harness.
type Option func(*Harness)

// WithEndpoint sets the endpoint URL requests are posted to.
func WithEndpoint(endpoint string) Option {
	return func(h *Harness) {
		h.endpoint = endpoint
	}
}

// WithOrigin sets the origin credentials are scoped to. Defaults to the
// endpoint's own origin.
func WithOrigin(origin string) Option {
	return func(h *Harness) {
		h.origin = origin
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Harness) {
		h.httpClient = c
	}
}

// WithCredentialHeader adds a header (for example Authorization) that is sent
// only to a same-origin endpoint.
func WithCredentialHeader(name, value string) Option {
	return func(h *Harness) {
		h.credHeaders.Add(name, value)
	}
}

// WithCookie adds a cookie that is sent only to a same-origin endpoint.
func WithCookie(c *http.Cookie) Option {
	return func(h *Harness) {
		h.cookies = append(h.cookies, c)
	}
}

// New creates a preview harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		endpoint:    DefaultEndpoint,
		httpClient:  http.DefaultClient,
		credHeaders: make(http.Header),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.origin == "" {
		h.origin = originOf(h.endpoint)
	}
	return h
}

// Endpoint returns the configured endpoint URL.
func (h *Harness) Endpoint() string {
	return h.endpoint
}

// Execute posts req and normalizes the response body. Only transport failures
// are returned as errors; an unparsable body or an HTTP error status still
// yields a Result.
func (h *Harness) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding preview request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating preview request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	h.attachCredentials(httpReq)

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		slog.Debug("preview request failed",
			slog.String("endpoint", h.endpoint),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing preview request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading preview response: %w", err)
	}

	res := Normalize(body)
	res.StatusCode = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")
	res.Category = Classify(res.ContentType)
	res.Duration = time.Since(start)
	res.DurationMs = res.Duration.Milliseconds()

	slog.Debug("preview request completed",
		slog.String("endpoint", h.endpoint),
		slog.Int("status", resp.StatusCode),
		slog.String("kind", string(res.Kind)),
		slog.Int("bytes", len(body)),
		slog.Int64("duration_ms", res.DurationMs),
	)

	return &res, nil
}

func (h *Harness) attachCredentials(req *http.Request) {
	if !sameOrigin(req.URL.String(), h.origin) {
		if len(h.credHeaders) > 0 || len(h.cookies) > 0 {
			slog.Debug("withholding credentials from cross-origin endpoint",
				slog.String("endpoint", req.URL.String()),
				slog.String("origin", h.origin),
			)
		}
		return
	}
	for name, values := range h.credHeaders {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
}

// originOf returns scheme://host[:port] with the default port made explicit,
// or "" when raw does not parse as an absolute URL.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" {
		switch scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		}
	}
	return scheme + "://" + host + ":" + port
}

func sameOrigin(a, b string) bool {
	oa, ob := originOf(a), originOf(b)
	return oa != "" && oa == ob
}
