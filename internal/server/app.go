// Package server initializes and runs the portal server: the snapshot store,
// the websocket hub and relay, and the HTTP endpoints. It handles graceful
// shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/server/api"
	"github.com/dmitrijs2005/weddingportal/internal/server/config"
	"github.com/dmitrijs2005/weddingportal/internal/server/hub"
	"github.com/dmitrijs2005/weddingportal/internal/server/metrics"
	"github.com/dmitrijs2005/weddingportal/internal/server/relay"
	"github.com/dmitrijs2005/weddingportal/internal/server/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *store.Store
	hub      *hub.Hub
	relay    *relay.Relay
	registry *prometheus.Registry
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogBackend, c.LogLevel, os.Stdout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st := store.New(store.Caps{Lanterns: c.LanternCap, Messages: c.MessageCap, Gallery: c.GalleryCap})
	h := hub.New(hub.Options{
		MaxMessageSize: c.MaxMessageSize.Int64(),
		PongWait:       c.PongWait,
		PingPeriod:     c.PingPeriod,
		WriteWait:      c.WriteWait,
		SendBuffer:     c.SendBuffer,
	}, m, logger)

	return &App{
		config:   c,
		logger:   logger,
		store:    st,
		hub:      h,
		relay:    relay.New(st, h, m, logger),
		registry: reg,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, ln net.Listener) {
	handler := api.NewServer(ctx, app.hub, app.relay, app.store, app.registry, app.config.AllowedOrigins, app.logger).Router()
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		app.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	ln, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, ln)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "app stopped")
	return nil
}
