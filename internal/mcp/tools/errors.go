package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/editor"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUpstreamError = "UPSTREAM_ERROR"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeStoreError    = "STORE_ERROR"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapUpstreamError converts a failure talking to the preview endpoint or the
// data source into a coded error. source names the upstream in messages.
func WrapUpstreamError(source string, err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	var httpErr *datasource.HTTPError
	var netErr net.Error

	switch {
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
		coded = &CodedError{Code: ErrCodeNotFound, Message: source + " returned 404", Cause: err}
	case errors.As(err, &httpErr):
		coded = &CodedError{Code: ErrCodeUpstreamError, Message: fmt.Sprintf("%s returned %d", source, httpErr.StatusCode), Cause: err}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(err.Error(), "context deadline exceeded"):
		coded = &CodedError{Code: ErrCodeTimeout, Message: source + " request timed out", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeUpstreamError, Message: source + " request failed", Cause: err}
	}

	slog.Warn("upstream error",
		slog.String("source", source),
		slog.String("code", coded.Code),
		slog.String("error", err.Error()),
	)

	return coded
}

// WrapStoreError converts a definition store failure into a coded error.
func WrapStoreError(name string, err error) error {
	if err == nil {
		return nil
	}
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound("definition", name)
	case errors.Is(err, store.ErrInvalidName):
		return &CodedError{Code: ErrCodeInvalidInput, Message: err.Error()}
	case errors.As(err, &verr):
		return &CodedError{Code: ErrCodeStoreError, Message: "stored definition is invalid", Cause: err}
	default:
		return &CodedError{Code: ErrCodeStoreError, Message: "definition store failed", Cause: err}
	}
}

// wrapSessionError maps session and editor errors onto coded errors.
func wrapSessionError(id string, err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return ErrNotFound("session", id)
	case errors.Is(err, editor.ErrRulesDisabled),
		errors.Is(err, editor.ErrIndexOutOfRange),
		errors.Is(err, editor.ErrUnknownField):
		return ErrInvalidInput(err.Error())
	default:
		return err
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
