package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PREVIEW_ENDPOINT", "DATASOURCE_URL", "DATASOURCE_TIMEOUT_MS", "QUERY_WORKERS", "QUERY_STORE_DIR", "SESSION_MAX", "PREVIEW_TIMEOUT_MS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "https://countries.trevorblades.com/", cfg.PreviewEndpoint)
	assert.Equal(t, "http://localhost:9999", cfg.DatasourceURL)
	assert.Equal(t, 5*time.Minute, cfg.DatasourceTimeout)
	assert.Equal(t, time.Duration(0), cfg.PreviewTimeout)
	assert.Equal(t, 4, cfg.QueryWorkers)
	assert.Equal(t, "./queries", cfg.StoreDir)
	assert.Equal(t, 64, cfg.SessionMax)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PREVIEW_ENDPOINT", "http://localhost:4000/graphql")
	t.Setenv("PREVIEW_TIMEOUT_MS", "1500")
	t.Setenv("QUERY_WORKERS", "not-a-number")
	t.Setenv("HEALTH_PROBE", "yes")
	t.Setenv("COMPACT_MAX_ARRAY_ITEMS", "2")

	cfg := FromEnv()
	assert.Equal(t, "http://localhost:4000/graphql", cfg.PreviewEndpoint)
	assert.Equal(t, 1500*time.Millisecond, cfg.PreviewTimeout)
	assert.Equal(t, DefaultQueryWorkers, cfg.QueryWorkers, "unparsable ints fall back to the default")
	assert.True(t, cfg.HealthProbe)
	assert.Equal(t, 2, cfg.CompactLimits().MaxArrayItems)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GQLQUERY_TEST_ONLY_STORE=/tmp/from-file\nSESSION_MAX=7\n"), 0o644))

	t.Setenv("GQLQUERY_ENV_FILE", path)
	t.Setenv("SESSION_MAX", "9")
	// godotenv sets variables that are absent; register cleanup for the one it adds.
	t.Setenv("GQLQUERY_TEST_ONLY_STORE", "")
	require.NoError(t, os.Unsetenv("GQLQUERY_TEST_ONLY_STORE"))

	cfg := Load()
	assert.Equal(t, path, cfg.EnvFile)
	assert.Equal(t, 9, cfg.SessionMax, "process environment wins over the file")
	assert.Equal(t, "/tmp/from-file", os.Getenv("GQLQUERY_TEST_ONLY_STORE"))
}

func TestLoad_MissingEnvFile(t *testing.T) {
	t.Setenv("GQLQUERY_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	cfg := Load()
	assert.Empty(t, cfg.EnvFile)
}
