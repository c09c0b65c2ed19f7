package config

import (
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
)

// Config holds runtime settings for the portal client.
//
// Units: ReconnectInterval and TypingInterval are time.Duration values.
type Config struct {
	ServerAddr        string
	UserName          string
	Role              models.Role
	CacheDSN          string
	ReconnectInterval time.Duration
	TypingInterval    time.Duration
	OutboxSize        int
	LogLevel          string
	LogBackend        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:8080"
	c.Role = models.RoleGuest
	c.CacheDSN = "portal.db"
	c.ReconnectInterval = 3 * time.Second
	c.TypingInterval = 2 * time.Second
	c.OutboxSize = 64
	c.LogLevel = "warn"
	c.LogBackend = logging.BackendSlog
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON, the environment and command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
