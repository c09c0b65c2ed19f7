// Package config loads runtime configuration for the portal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed PORTAL_CLIENT_, optionally seeded from a
//     dotenv file given with -e or -env (default ./.env).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   server address (host:port or ws:// URL)
//	-n string   guest name to join as
//	-r string   role: guest, couple or admin
//	-d string   SQLite DSN of the warm-start cache
//	-i int      reconnect interval (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "server_addr": "127.0.0.1:8080",
//	  "user_name": "ann",
//	  "role": "guest",
//	  "cache_dsn": "portal.db",
//	  "reconnect_interval": "3s",
//	  "typing_interval": "2s",
//	  "outbox_size": 64,
//	  "log_level": "warn",
//	  "log_backend": "slog"
//	}
package config
