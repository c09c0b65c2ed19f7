package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/google/go-cmp/cmp"
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

	assert.Equal(t, "127.0.0.1:8080", c.ServerAddr)
	assert.Equal(t, "", c.UserName)
	assert.Equal(t, models.RoleGuest, c.Role)
	assert.Equal(t, "portal.db", c.CacheDSN)
	assert.Equal(t, 3*time.Second, c.ReconnectInterval)
	assert.Equal(t, 2*time.Second, c.TypingInterval)
	assert.Equal(t, 64, c.OutboxSize)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	jsonPath := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"server_addr": "json:1",
		"user_name": "from-json",
		"role": "couple",
		"typing_interval": "5s"
	}`), 0o600))

	t.Setenv("PORTAL_CLIENT_USER_NAME", "from-env")
	t.Setenv("PORTAL_CLIENT_CACHE_DSN", "env.db")

	os.Args = []string{"testbin", "-c", jsonPath, "-a", "flag:2"}

	cfg := LoadConfig()

	assert.Equal(t, "flag:2", cfg.ServerAddr)
	assert.Equal(t, "from-env", cfg.UserName)
	assert.Equal(t, models.RoleCouple, cfg.Role)
	assert.Equal(t, "env.db", cfg.CacheDSN)
	assert.Equal(t, 5*time.Second, cfg.TypingInterval)
}

func TestParseJson_InvalidPanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"reconnect_interval": true}`), 0o600))
	os.Args = []string{"testbin", "-config", bad}

	require.Panics(t, func() { parseJson(defaults()) })
}

func TestParseEnv_ExplicitMissingFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "nope.env")}

	require.Panics(t, func() { parseEnv(defaults()) })
}

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "Test1 OK",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-n", "ann", "-r", "admin", "-d", ":memory:", "-i", "10", "-l", "debug"},
			expected: func() *Config {
				c := defaults()
				c.ServerAddr = "127.0.0.1:9090"
				c.UserName = "ann"
				c.Role = models.RoleAdmin
				c.CacheDSN = ":memory:"
				c.ReconnectInterval = 10 * time.Second
				c.LogLevel = "debug"
				return c
			}(),
		},
		{name: "Test2 incorrect reconnect interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := defaults()

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
