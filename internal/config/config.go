// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/usestring/gqlquery-mcp/pkg/preview"
)

// Defaults for values shared with other packages.
const (
	DefaultPreviewEndpoint    = preview.DefaultEndpoint
	DefaultDatasourceURL      = "http://localhost:9999"
	DefaultDatasourceTimeout  = 300000 // ms (5 minutes)
	DefaultQueryWorkers       = 4
	DefaultStoreDir           = "./queries"
	DefaultSessionMax         = 64
	DefaultEnvFile            = ".env"
	DefaultPreviewPathHints   = 50
)

// Config holds all configuration for the MCP server.
type Config struct {
	// Preview harness
	PreviewEndpoint   string        // PREVIEW_ENDPOINT, default "https://countries.trevorblades.com/"
	PreviewOrigin     string        // PREVIEW_ORIGIN, default "" (the endpoint's own origin)
	PreviewTimeout    time.Duration // PREVIEW_TIMEOUT_MS, default 0 (no deadline)
	PreviewAuthHeader string        // PREVIEW_AUTHORIZATION, sent only to a same-origin endpoint
	PreviewPathHints  int           // PREVIEW_PATH_HINTS, default 50

	// Backend executor
	DatasourceURL     string        // DATASOURCE_URL, default "http://localhost:9999"
	DatasourceTimeout time.Duration // DATASOURCE_TIMEOUT_MS, default 300000ms (5m)
	QueryWorkers      int           // QUERY_WORKERS, default 4
	HealthProbe       bool          // HEALTH_PROBE, default false

	// Persistence and sessions
	StoreDir   string // QUERY_STORE_DIR, default "./queries"
	SessionMax int    // SESSION_MAX, default 64

	// Compaction of preview payloads
	CompactMaxArrayItems int // COMPACT_MAX_ARRAY_ITEMS
	CompactMaxStringLen  int // COMPACT_MAX_STRING_LEN
	CompactMaxDepth      int // COMPACT_MAX_DEPTH

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true

	// EnvFile is the dotenv file that was applied, empty when none was found.
	EnvFile string
}

// Load reads an optional dotenv file (GQLQUERY_ENV_FILE, default ".env") and
// then the environment. Variables already set in the environment win over the
// file. A missing file is not an error.
func Load() *Config {
	envFile := getEnvString("GQLQUERY_ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(envFile); err != nil {
		envFile = ""
	}

	cfg := FromEnv()
	cfg.EnvFile = envFile
	return cfg
}

// FromEnv reads configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		PreviewEndpoint:   getEnvString("PREVIEW_ENDPOINT", DefaultPreviewEndpoint),
		PreviewOrigin:     getEnvString("PREVIEW_ORIGIN", ""),
		PreviewTimeout:    getEnvDurationMs("PREVIEW_TIMEOUT_MS", 0),
		PreviewAuthHeader: getEnvString("PREVIEW_AUTHORIZATION", ""),
		PreviewPathHints:  getEnvInt("PREVIEW_PATH_HINTS", DefaultPreviewPathHints),

		DatasourceURL:     getEnvString("DATASOURCE_URL", DefaultDatasourceURL),
		DatasourceTimeout: getEnvDurationMs("DATASOURCE_TIMEOUT_MS", DefaultDatasourceTimeout),
		QueryWorkers:      getEnvInt("QUERY_WORKERS", DefaultQueryWorkers),
		HealthProbe:       getEnvBool("HEALTH_PROBE", false),

		StoreDir:   getEnvString("QUERY_STORE_DIR", DefaultStoreDir),
		SessionMax: getEnvInt("SESSION_MAX", DefaultSessionMax),

		CompactMaxArrayItems: getEnvInt("COMPACT_MAX_ARRAY_ITEMS", preview.DefaultLimits.MaxArrayItems),
		CompactMaxStringLen:  getEnvInt("COMPACT_MAX_STRING_LEN", preview.DefaultLimits.MaxStringLen),
		CompactMaxDepth:      getEnvInt("COMPACT_MAX_DEPTH", preview.DefaultLimits.MaxDepth),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// CompactLimits returns the configured preview compaction limits.
func (c *Config) CompactLimits() preview.Limits {
	return preview.Limits{
		MaxArrayItems: c.CompactMaxArrayItems,
		MaxStringLen:  c.CompactMaxStringLen,
		MaxDepth:      c.CompactMaxDepth,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
