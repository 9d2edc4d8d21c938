package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration file.
// Durations accept either "30s"-style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	MetricsAddr      string         `json:"metrics_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	StorageBackend   string         `json:"storage_backend"`
	SessionBackend   string         `json:"session_backend"`
	RedisAddr        string         `json:"redis_addr"`
	RedisPrefix      string         `json:"redis_prefix"`
	TokenFormat      string         `json:"token_format"`
	SecretKey        string         `json:"secret_key"`
	IDLength         int            `json:"id_length"`
	TokenIDLength    int            `json:"token_id_length"`
	AccountCacheTTL  timex.Duration `json:"account_cache_ttl"`
	LogLevel         string         `json:"log_level"`
	StartupRetries   int            `json:"startup_retries"`
}

// parseJson overlays values from the JSON file named by -c/-config (or the
// CONFIG environment variable) onto config. Only keys present with a
// non-zero value override what is already set. A missing or malformed file
// is fatal and panics.
func parseJson(config *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPrefix, c.RedisPrefix)
	setString(&config.TokenFormat, c.TokenFormat)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.IDLength != 0 {
		config.IDLength = c.IDLength
	}
	if c.TokenIDLength != 0 {
		config.TokenIDLength = c.TokenIDLength
	}
	if c.AccountCacheTTL.Duration != 0 {
		config.AccountCacheTTL = c.AccountCacheTTL.Duration
	}
	if c.StartupRetries != 0 {
		config.StartupRetries = c.StartupRetries
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
