package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.MetricsAddr = "127.0.0.1:0"
	c.StorageBackend = config.BackendMemory
	c.SessionBackend = config.BackendMemory
	c.AccountCacheTTL = 0
	c.LogLevel = "error"
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := memoryConfig()
	c.TokenFormat = "paseto"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewApp_Memory(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	assert.IsType(t, &users.MemoryRepository{}, app.repos.Users())
	assert.IsType(t, &sessions.MemoryRepository{}, app.repos.Sessions())
	assert.NotNil(t, app.metrics)

	user, err := app.auth.Register(context.Background(), "a@b.c", "a", "p")
	require.NoError(t, err)
	tok, _, err := app.auth.Login(context.Background(), "A@B.C", "p")
	require.NoError(t, err)
	caller, err := app.auth.ResolveCaller(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, caller.ID)
}

func TestOpenRepositories_RedisAndCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c := memoryConfig()
	c.SessionBackend = config.BackendRedis
	c.RedisAddr = mr.Addr()
	c.AccountCacheTTL = time.Minute

	repos, err := openRepositories(context.Background(), c)
	require.NoError(t, err)
	defer repos.Close()

	assert.IsType(t, &sessions.RedisRepository{}, repos.Sessions())
	assert.IsType(t, &users.CachedRepository{}, repos.Users())
	assert.IsType(t, &repomanager.Override{}, repos)
}

func TestOpenRepositories_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	c := memoryConfig()
	c.SessionBackend = config.BackendRedis
	c.RedisAddr = addr
	c.StartupRetries = 1

	_, err := openRepositories(context.Background(), c)
	assert.ErrorContains(t, err, "redis init error")
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
