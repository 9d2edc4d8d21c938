// Package server wires configuration, storage backends, the token store and
// the authentication service together and runs the gRPC and metrics servers
// until the process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/idgen"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/tokens"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const startupBackoff = 500 * time.Millisecond

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	metrics *metrics.Server
	auth    *services.AuthService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := logging.ParseLevel(c.LogLevel)
	logger := logging.NewJSON(os.Stdout, level)

	var ms *metrics.Server
	var m *metrics.Metrics
	if c.MetricsAddr != "" {
		ms = metrics.NewServer(c.MetricsAddr, logger)
		m = ms.Metrics()
	}

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var codec tokens.Codec = tokens.PlainCodec{}
	if c.TokenFormat == config.TokenFormatJWT {
		codec = tokens.NewJWTCodec([]byte(c.SecretKey))
	}

	ids := idgen.New()
	store := tokens.NewStore(repos.Sessions(), codec, ids, c.TokenIDLength, logger, m)
	auth := services.NewAuthService(repos.Users(), store, ids, c.IDLength, logger, m)

	return &App{config: c, logger: logger, repos: repos, metrics: ms, auth: auth}, nil
}

// openRepositories builds the account backend and layers the session
// backend and account cache on top of it.
func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	var base repomanager.RepositoryManager
	switch c.StorageBackend {
	case config.BackendPostgres:
		db, err := dbx.Open(ctx, "pgx", c.DatabaseDSN, uint64(c.StartupRetries), startupBackoff)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		base = repomanager.NewPostgresRepositoryManager(db)
	default:
		base = repomanager.NewMemoryRepositoryManager()
	}

	repos := repomanager.NewOverride(base)

	switch c.SessionBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := waitForRedis(ctx, client, uint64(c.StartupRetries)); err != nil {
			_ = client.Close()
			_ = base.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		repos.WithSessions(sessions.NewRedisRepository(client, c.RedisPrefix), client)
	case config.BackendMemory:
		if c.StorageBackend != config.BackendMemory {
			repos.WithSessions(sessions.NewMemoryRepository(), nil)
		}
	}

	if c.AccountCacheTTL > 0 {
		cached, err := users.NewCachedRepository(repos.Users(), c.AccountCacheTTL)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		repos.WithUsers(cached, cached)
	}

	return repos, nil
}

func waitForRedis(ctx context.Context, client *redis.Client, retries uint64) error {
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(startupBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	errCh, err := app.metrics.Start(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			cancelFunc()
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.metrics.Stop(shutdownCtx); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}

// Run serves until a termination signal arrives or a server fails, then
// releases the storage backends.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.metrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(context.Background(), "error closing storage", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
