package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/flagx"
	"github.com/dmitrijs2005/weddingportal/internal/models"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   server address
//	-n string   guest name
//	-r string   role
//	-d string   cache DSN
//	-i int      reconnect interval in seconds
//	-l string   log level
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-n", "-r", "-d", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port to access server")
	fs.StringVar(&cfg.UserName, "n", cfg.UserName, "guest name")
	role := fs.String("r", string(cfg.Role), "role (guest, couple, admin)")
	fs.StringVar(&cfg.CacheDSN, "d", cfg.CacheDSN, "cache DSN")
	reconnectInterval := fs.Int("i", int(cfg.ReconnectInterval.Seconds()), "reconnect interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Role = models.Role(*role)
	cfg.ReconnectInterval = time.Duration(*reconnectInterval) * time.Second
}
