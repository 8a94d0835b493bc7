package preview

import (
	"encoding/json"
	"mime"
	"strings"
	"time"
)

// Kind tells which normalization succeeded for a response body.
type Kind string

const (
	KindStructured Kind = "structured"
	KindText       Kind = "text"
)

// Category is a broad classification of the response Content-Type header.
// It is informational; normalization never depends on it.
type Category string

const (
	CategoryJSON    Category = "json"
	CategoryXML     Category = "xml"
	CategoryHTML    Category = "html"
	CategoryText    Category = "text"
	CategoryBinary  Category = "binary"
	CategoryUnknown Category = "unknown"
)

// Result is a normalized preview response.
type Result struct {
	Kind        Kind          `json:"kind"`
	Data        any           `json:"data,omitempty"` // parsed JSON when Kind is structured
	Text        string        `json:"text,omitempty"` // raw body when Kind is text
	StatusCode  int           `json:"status_code,omitempty"`
	ContentType string        `json:"content_type,omitempty"`
	Category    Category      `json:"category,omitempty"`
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"duration_ms"`
}

// Value returns whichever representation normalization produced.
func (r *Result) Value() any {
	if r.Kind == KindStructured {
		return r.Data
	}
	return r.Text
}

// Normalize parses body as JSON and falls back to the raw text. It never
// fails: a malformed JSON body is simply a text result.
func Normalize(body []byte) Result {
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return Result{Kind: KindStructured, Data: v}
	}
	return Result{Kind: KindText, Text: string(body)}
}

// Classify maps a Content-Type header value to a Category.
func Classify(contentType string) Category {
	if strings.TrimSpace(contentType) == "" {
		return CategoryUnknown
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case strings.Contains(mediaType, "json"):
		// application/json, application/graphql-response+json, ...
		return CategoryJSON
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return CategoryHTML
	case strings.Contains(mediaType, "xml"):
		return CategoryXML
	case strings.HasPrefix(mediaType, "text/"):
		return CategoryText
	}
	return CategoryBinary
}
