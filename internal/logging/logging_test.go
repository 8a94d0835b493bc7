package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Config{Level: "debug", Format: "json"}))
	logger.Debug("committing query definition", slog.Int("rules", 2))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "committing query definition", rec["msg"])
	assert.Equal(t, float64(2), rec["rules"])
}

func TestNewHandler_LevelFilter(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, Config{Level: "warn"})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestSetup_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := DefaultConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "server.log")
	cleanup, err := Setup(cfg)
	require.NoError(t, err)

	slog.Info("session opened", slog.String("name", "countries"))
	require.NoError(t, cleanup())

	raw, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "session opened")
	assert.Contains(t, string(raw), "name=countries")
}
