package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/weddingportal/internal/flagx"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerAddr        string         `json:"server_addr"`
	UserName          string         `json:"user_name"`
	Role              string         `json:"role"`
	CacheDSN          string         `json:"cache_dsn"`
	ReconnectInterval timex.Duration `json:"reconnect_interval"`
	TypingInterval    timex.Duration `json:"typing_interval"`
	OutboxSize        int            `json:"outbox_size"`
	LogLevel          string         `json:"log_level"`
	LogBackend        string         `json:"log_backend"`
}

// parseJson overlays cfg with the JSON file given via -c/-config. Absent keys
// keep their value. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerAddr != "" {
		cfg.ServerAddr = c.ServerAddr
	}
	if c.UserName != "" {
		cfg.UserName = c.UserName
	}
	if c.Role != "" {
		cfg.Role = models.Role(c.Role)
	}
	if c.CacheDSN != "" {
		cfg.CacheDSN = c.CacheDSN
	}
	if c.ReconnectInterval.Duration > 0 {
		cfg.ReconnectInterval = c.ReconnectInterval.Duration
	}
	if c.TypingInterval.Duration > 0 {
		cfg.TypingInterval = c.TypingInterval.Duration
	}
	if c.OutboxSize > 0 {
		cfg.OutboxSize = c.OutboxSize
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.LogBackend != "" {
		cfg.LogBackend = c.LogBackend
	}
}
