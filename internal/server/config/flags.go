package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var serverFlags = []string{
	"-a", "-m", "-d", "-s", "-l",
	"-storage", "-sessions", "-redis", "-redis-prefix", "-token-format",
	"-id-length", "-token-id-length", "-cache-ttl", "-retries",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string             gRPC bind address (e.g., ":50051")
//	-m string             metrics bind address, empty disables
//	-d string             PostgreSQL DSN
//	-s string             JWT HMAC secret key
//	-l string             log level
//	-storage string       account backend: postgres|memory
//	-sessions string      session backend: postgres|redis|memory
//	-redis string         Redis address
//	-redis-prefix string  Redis key prefix
//	-token-format string  bearer format: plain|jwt
//	-id-length int        user id digits minus one
//	-token-id-length int  token value digits minus one
//	-cache-ttl int        account cache lifetime, seconds (0 disables)
//	-retries int          startup connection retries
//
// os.Args is filtered with flagx.FilterArgs first so that flags owned by
// other components (such as -c) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "account storage backend")
	fs.StringVar(&config.SessionBackend, "sessions", config.SessionBackend, "session storage backend")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPrefix, "redis-prefix", config.RedisPrefix, "redis key prefix")
	fs.StringVar(&config.TokenFormat, "token-format", config.TokenFormat, "bearer token format")
	fs.IntVar(&config.IDLength, "id-length", config.IDLength, "user id length")
	fs.IntVar(&config.TokenIDLength, "token-id-length", config.TokenIDLength, "token value length")
	cacheTTL := fs.Int("cache-ttl", int(config.AccountCacheTTL.Seconds()), "account cache ttl (in seconds)")
	fs.IntVar(&config.StartupRetries, "retries", config.StartupRetries, "startup retries")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccountCacheTTL = time.Duration(*cacheTTL) * time.Second
}
