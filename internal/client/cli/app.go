package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/client/api"
	"github.com/dbelyakov/invoicekeeper/internal/client/config"
)

// Mode reflects the last known reachability of the server.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	api      api.Client
	userName string
	Mode     Mode
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := api.NewHTTPClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.api.Close() }()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

// probeServer pings the health endpoint once and flips Mode to match.
func (a *App) probeServer(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(pingCtx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher probes the server's health endpoint, once right
// away and then on the given interval, keeping Mode current. It returns when
// ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.probeServer(ctx)
	for {
		select {
		case <-ticker.C:
			a.probeServer(ctx)
		case <-ctx.Done():
			return
		}
	}
}
