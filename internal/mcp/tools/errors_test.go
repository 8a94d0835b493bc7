package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usestring/gqlquery-mcp/internal/datasource"
	"github.com/usestring/gqlquery-mcp/internal/session"
	"github.com/usestring/gqlquery-mcp/internal/store"
	"github.com/usestring/gqlquery-mcp/pkg/editor"
)

func TestWrapUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", &datasource.HTTPError{StatusCode: 404}, ErrCodeNotFound},
		{"server error", &datasource.HTTPError{StatusCode: 500}, ErrCodeUpstreamError},
		{"deadline", fmt.Errorf("posting: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"dial", errors.New("dial tcp 127.0.0.1:1: connection refused"), ErrCodeUpstreamError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapUpstreamError("data source", tt.err)
			assert.Equal(t, tt.code, codeOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.NoError(t, WrapUpstreamError("x", nil))
}

func TestWrapStoreError(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, codeOf(WrapStoreError("q", fmt.Errorf("%w: q", store.ErrNotFound))))
	assert.Equal(t, ErrCodeInvalidInput, codeOf(WrapStoreError("..", store.ValidateName(".."))))
	assert.Equal(t, ErrCodeStoreError, codeOf(WrapStoreError("q", &store.ValidationError{Name: "q"})))
	assert.Equal(t, ErrCodeStoreError, codeOf(WrapStoreError("q", errors.New("disk full"))))
}

func TestWrapSessionError(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, codeOf(wrapSessionError("s", session.ErrClosed)))
	assert.Equal(t, ErrCodeInvalidInput, codeOf(wrapSessionError("s", editor.ErrRulesDisabled)))

	plain := errors.New("boom")
	assert.Same(t, plain, wrapSessionError("s", plain))
}
