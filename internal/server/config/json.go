package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/weddingportal/internal/flagx"
	"github.com/dmitrijs2005/weddingportal/internal/sizex"
	"github.com/dmitrijs2005/weddingportal/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration and sizes use sizex.Bytes, so both "54s"/"8MB" strings and
// plain numbers are accepted.
type JsonConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	AllowedOrigins []string       `json:"allowed_origins"`
	MaxMessageSize sizex.Bytes    `json:"max_message_size"`
	PongWait       timex.Duration `json:"pong_wait"`
	PingPeriod     timex.Duration `json:"ping_period"`
	WriteWait      timex.Duration `json:"write_wait"`
	SendBuffer     int            `json:"send_buffer"`
	LanternCap     int            `json:"lantern_cap"`
	MessageCap     int            `json:"message_cap"`
	GalleryCap     int            `json:"gallery_cap"`
	LogLevel       string         `json:"log_level"`
	LogBackend     string         `json:"log_backend"`
}

// parseJson loads the file named by -c/-config, if any, over config. Keys
// missing from the file keep their current value. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
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

	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.MaxMessageSize > 0 {
		config.MaxMessageSize = c.MaxMessageSize
	}
	if c.PongWait.Duration > 0 {
		config.PongWait = c.PongWait.Duration
	}
	if c.PingPeriod.Duration > 0 {
		config.PingPeriod = c.PingPeriod.Duration
	}
	if c.WriteWait.Duration > 0 {
		config.WriteWait = c.WriteWait.Duration
	}
	if c.SendBuffer > 0 {
		config.SendBuffer = c.SendBuffer
	}
	if c.LanternCap > 0 {
		config.LanternCap = c.LanternCap
	}
	if c.MessageCap > 0 {
		config.MessageCap = c.MessageCap
	}
	if c.GalleryCap > 0 {
		config.GalleryCap = c.GalleryCap
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.LogBackend != "" {
		config.LogBackend = c.LogBackend
	}
}
