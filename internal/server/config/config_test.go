package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/sizex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":8080", c.ListenAddr)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, sizex.Bytes(8<<20), c.MaxMessageSize)
	assert.Equal(t, 60*time.Second, c.PongWait)
	assert.Equal(t, 54*time.Second, c.PingPeriod)
	assert.Equal(t, 10*time.Second, c.WriteWait)
	assert.Equal(t, 256, c.SendBuffer)
	assert.Equal(t, 20, c.LanternCap)
	assert.Equal(t, 100, c.MessageCap)
	assert.Equal(t, 50, c.GalleryCap)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, defaults(), c)
}
