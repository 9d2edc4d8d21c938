package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	full := writeTempJSON(t, map[string]any{
		"endpoint_addr_grpc": "www.example:9000",
		"metrics_addr":       ":9200",
		"database_dsn":       "postgres://db/gophauth",
		"storage_backend":    "memory",
		"session_backend":    "redis",
		"redis_addr":         "redis:6379",
		"redis_prefix":       "auth",
		"token_format":       "jwt",
		"secret_key":         "my_secret_key",
		"id_length":          7,
		"token_id_length":    13,
		"account_cache_ttl":  "30s",
		"log_level":          "debug",
		"startup_retries":    9,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}
		t.Setenv("CONFIG", "")

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, ":9200", cfg.MetricsAddr)
		assert.Equal(t, "postgres://db/gophauth", cfg.DatabaseDSN)
		assert.Equal(t, BackendMemory, cfg.StorageBackend)
		assert.Equal(t, BackendRedis, cfg.SessionBackend)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, "auth", cfg.RedisPrefix)
		assert.Equal(t, TokenFormatJWT, cfg.TokenFormat)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 7, cfg.IDLength)
		assert.Equal(t, 13, cfg.TokenIDLength)
		assert.Equal(t, 30*time.Second, cfg.AccountCacheTTL)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 9, cfg.StartupRetries)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"token_format": "jwt"})
		os.Args = []string{"testbin", "-c", partial}
		t.Setenv("CONFIG", "")

		cfg := defaults()
		parseJson(cfg)

		assert.Equal(t, TokenFormatJWT, cfg.TokenFormat)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 6, cfg.IDLength)
	})

	t.Run("file from CONFIG env", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("CONFIG", full)

		cfg := defaults()
		parseJson(cfg)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
	})

	t.Run("no config and no flags leaves config unchanged", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("CONFIG", "")

		cfg := defaults()
		parseJson(cfg)
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("flags override json", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", full, "-a", ":6000"}
		t.Setenv("CONFIG", "")

		cfg := LoadConfig()
		assert.Equal(t, ":6000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
	})
}

func Test_parseJson_Panics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")

	t.Run("missing file", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		os.Args = []string{"testbin", "-c", path}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
