package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/flagx"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. PORTAL_CLIENT_USER_NAME.
const EnvPrefix = "PORTAL_CLIENT"

type EnvConfig struct {
	ServerAddr        string        `envconfig:"SERVER_ADDR"`
	UserName          string        `envconfig:"USER_NAME"`
	Role              string        `envconfig:"ROLE"`
	CacheDSN          string        `envconfig:"CACHE_DSN"`
	ReconnectInterval time.Duration `envconfig:"RECONNECT_INTERVAL"`
	TypingInterval    time.Duration `envconfig:"TYPING_INTERVAL"`
	OutboxSize        int           `envconfig:"OUTBOX_SIZE"`
	LogLevel          string        `envconfig:"LOG_LEVEL"`
	LogBackend        string        `envconfig:"LOG_BACKEND"`
}

func parseEnv(cfg *Config) {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		panic(err)
	}

	e := EnvConfig{
		ServerAddr:        cfg.ServerAddr,
		UserName:          cfg.UserName,
		Role:              string(cfg.Role),
		CacheDSN:          cfg.CacheDSN,
		ReconnectInterval: cfg.ReconnectInterval,
		TypingInterval:    cfg.TypingInterval,
		OutboxSize:        cfg.OutboxSize,
		LogLevel:          cfg.LogLevel,
		LogBackend:        cfg.LogBackend,
	}
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		panic(err)
	}

	cfg.ServerAddr = e.ServerAddr
	cfg.UserName = e.UserName
	cfg.Role = models.Role(e.Role)
	cfg.CacheDSN = e.CacheDSN
	cfg.ReconnectInterval = e.ReconnectInterval
	cfg.TypingInterval = e.TypingInterval
	cfg.OutboxSize = e.OutboxSize
	cfg.LogLevel = e.LogLevel
	cfg.LogBackend = e.LogBackend
}
