package common

// Server-side list caps. Oldest items are evicted first.
const (
	DefaultLanternCap = 20
	DefaultMessageCap = 100
	DefaultGalleryCap = 50
)

// WebsocketPath is the route the transport channel is served on.
const WebsocketPath = "/ws"
