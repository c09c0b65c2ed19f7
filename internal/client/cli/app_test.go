package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/client/cache"
	"github.com/dmitrijs2005/weddingportal/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerAddr = "127.0.0.1:1"
	cfg.CacheDSN = filepath.Join(t.TempDir(), "portal.db")
	cfg.ReconnectInterval = 20 * time.Millisecond
	return cfg
}

func TestNewApp_BadServerAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.ServerAddr = "ftp://nowhere"

	_, err := NewApp(cfg)
	require.Error(t, err)
}

func TestApp_RunOfflineAndPersistCache(t *testing.T) {
	out := captureOutput(t)
	cfg := testConfig(t)
	cfg.UserName = "Ann"

	a, err := NewApp(cfg)
	require.NoError(t, err)
	a.in = strings.NewReader("heart\nheart\nshow\nexit\n")

	require.NoError(t, a.Run(context.Background()))

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "portal (Ann offline)> ")
	assert.Contains(t, joined, "offline: applied locally")
	assert.Contains(t, joined, "hearts: 2")

	// the next start sees the cached counter
	db, err := cache.InitDatabase(context.Background(), cfg.CacheDSN)
	require.NoError(t, err)
	defer db.Close()
	raw, err := cache.NewStore(db, a.logger).Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"heartCount":2`)
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	captureOutput(t)
	a, err := NewApp(testConfig(t))
	require.NoError(t, err)

	// a reader that never returns keeps the REPL blocked
	r, w := io.Pipe()
	defer w.Close()
	a.in = r

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
