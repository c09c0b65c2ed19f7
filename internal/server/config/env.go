package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/flagx"
	"github.com/dmitrijs2005/weddingportal/internal/sizex"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. PORTAL_LISTEN_ADDR.
const EnvPrefix = "PORTAL"

const defaultEnvFile = ".env"

// EnvConfig lists the variables read by parseEnv.
type EnvConfig struct {
	ListenAddr     string        `envconfig:"LISTEN_ADDR"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS"`
	MaxMessageSize sizex.Bytes   `envconfig:"MAX_MESSAGE_SIZE"`
	PongWait       time.Duration `envconfig:"PONG_WAIT"`
	PingPeriod     time.Duration `envconfig:"PING_PERIOD"`
	WriteWait      time.Duration `envconfig:"WRITE_WAIT"`
	SendBuffer     int           `envconfig:"SEND_BUFFER"`
	LanternCap     int           `envconfig:"LANTERN_CAP"`
	MessageCap     int           `envconfig:"MESSAGE_CAP"`
	GalleryCap     int           `envconfig:"GALLERY_CAP"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
	LogBackend     string        `envconfig:"LOG_BACKEND"`
}

// loadEnvFile seeds the process environment from the dotenv file named by
// -e/-env, falling back to ./.env. Variables already set are not overridden.
// A missing default file is fine; a missing explicit one panics.
func loadEnvFile() {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}
}

// parseEnv overlays PORTAL_* variables on config. Unset variables keep the
// current value; malformed values panic.
func parseEnv(config *Config) {
	loadEnvFile()

	e := EnvConfig{
		ListenAddr:     config.ListenAddr,
		AllowedOrigins: config.AllowedOrigins,
		MaxMessageSize: config.MaxMessageSize,
		PongWait:       config.PongWait,
		PingPeriod:     config.PingPeriod,
		WriteWait:      config.WriteWait,
		SendBuffer:     config.SendBuffer,
		LanternCap:     config.LanternCap,
		MessageCap:     config.MessageCap,
		GalleryCap:     config.GalleryCap,
		LogLevel:       config.LogLevel,
		LogBackend:     config.LogBackend,
	}

	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		panic(err)
	}

	config.ListenAddr = e.ListenAddr
	config.AllowedOrigins = e.AllowedOrigins
	config.MaxMessageSize = e.MaxMessageSize
	config.PongWait = e.PongWait
	config.PingPeriod = e.PingPeriod
	config.WriteWait = e.WriteWait
	config.SendBuffer = e.SendBuffer
	config.LanternCap = e.LanternCap
	config.MessageCap = e.MessageCap
	config.GalleryCap = e.GalleryCap
	config.LogLevel = e.LogLevel
	config.LogBackend = e.LogBackend
}
