package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/weddingportal/internal/flagx"
	"github.com/dmitrijs2005/weddingportal/internal/sizex"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-o string   comma separated allowed websocket origins, "*" for any
//	-m string   max inbound frame size (e.g., "8MB")
//	-l string   log level (debug, info, warn, error)
//	-b string   log backend (slog, zerolog)
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c, -e) do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-m", "-l", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed websocket origins")
	maxSize := fs.String("m", "", "max inbound message size")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "b", config.LogBackend, "log backend")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AllowedOrigins = splitList(*origins)

	if *maxSize != "" {
		size, err := sizex.Parse(*maxSize)
		if err != nil {
			panic(err)
		}
		config.MaxMessageSize = size
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
