package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const statusCheckInterval = 10 * time.Second

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer

	mu    sync.Mutex
	email string
	mode  Mode
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		client: apiClient,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, statusCheckInterval)

	printlnFn("Welcome to gophauth CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// withTimeout bounds a single server call by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) setEmail(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.email = email
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.email != "" && a.client.LoggedIn() {
		s = a.email + " "
	}
	if a.mode != "" {
		s += string(a.mode)
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	check := func() {
		pctx, cancel := a.withTimeout(ctx)
		defer cancel()
		if err := a.client.Ping(pctx); err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
