// Package config handles configuration for the portal server, including
// defaults, a JSON overlay, environment variables and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/sizex"
)

// Config holds runtime settings for the portal server.
//
// Fields:
//   - ListenAddr: HTTP bind address serving /ws, /api/snapshot, /healthz and /metrics.
//   - AllowedOrigins: websocket Origin values accepted on upgrade; "*" accepts any.
//   - MaxMessageSize: largest inbound frame. Media uploads travel as data URIs, so keep it generous.
//   - PongWait / PingPeriod / WriteWait: transport liveness timings.
//   - SendBuffer: per-connection outbound queue length before a client is dropped.
//   - LanternCap / MessageCap / GalleryCap: list caps, oldest evicted first.
//   - LogLevel / LogBackend: see logging.New.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	MaxMessageSize sizex.Bytes
	PongWait       time.Duration
	PingPeriod     time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	LanternCap     int
	MessageCap     int
	GalleryCap     int
	LogLevel       string
	LogBackend     string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.AllowedOrigins = []string{"*"}
	c.MaxMessageSize = 8 << 20
	c.PongWait = 60 * time.Second
	c.PingPeriod = 54 * time.Second
	c.WriteWait = 10 * time.Second
	c.SendBuffer = 256
	c.LanternCap = common.DefaultLanternCap
	c.MessageCap = common.DefaultMessageCap
	c.GalleryCap = common.DefaultGalleryCap
	c.LogLevel = "info"
	c.LogBackend = logging.BackendSlog
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (optionally seeded from a
// dotenv file) and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
