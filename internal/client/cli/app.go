package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/weddingportal/internal/client/cache"
	"github.com/dmitrijs2005/weddingportal/internal/client/config"
	"github.com/dmitrijs2005/weddingportal/internal/client/mirror"
	"github.com/dmitrijs2005/weddingportal/internal/client/services"
	"github.com/dmitrijs2005/weddingportal/internal/client/transport"
	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	mirror    *mirror.Mirror
	portal    services.PortalService
	transport *transport.Client
	cache     *cache.Store
	in        io.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(c.LogBackend, c.LogLevel, os.Stderr)

	db, err := cache.InitDatabase(ctx, c.CacheDSN)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	store := cache.NewStore(db, logger)

	tc, err := transport.New(c.ServerAddr, transport.Options{
		ReconnectInterval: c.ReconnectInterval,
		OutboxSize:        c.OutboxSize,
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	m := mirror.New(logger)

	return &App{
		config:    c,
		logger:    logger,
		mirror:    m,
		portal:    services.NewPortalService(m, tc, store, c.TypingInterval, logger),
		transport: tc,
		cache:     store,
		in:        os.Stdin,
	}, nil
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run loads the cache, connects in the background and serves the REPL until
// the user exits or ctx is cancelled. The cache is saved on the way out.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.initSignalHandler(cancel)

	if err := a.portal.LoadCache(ctx); err != nil {
		a.logger.Warn(ctx, "warm start skipped", "error", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = a.transport.Run(ctx, a.portal)
	}()

	if a.config.UserName != "" {
		if err := a.portal.Join(ctx, a.config.UserName, a.config.Role); err != nil && !errors.Is(err, common.ErrNotConnected) {
			printlnFn("join failed:", err)
		}
	}

	printlnFn("Wedding portal (type 'help' for commands)")

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.status, bufio.NewScanner(a.in))
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	cancel()
	wg.Wait()

	// ctx is gone by now
	saveCtx := context.WithoutCancel(ctx)
	if err := a.portal.SaveCache(saveCtx); err != nil {
		a.logger.Warn(saveCtx, "cache save failed", "error", err)
	}
	return a.cache.Close()
}

func (a *App) status() string {
	s := "offline"
	if a.mirror.Connected() {
		s = "online"
	}
	if me, ok := a.portal.Me(); ok {
		s = me.Name + " " + s
	}
	return "(" + s + ")"
}
