// Package transport keeps a websocket connection to the portal server open,
// reconnecting on a fixed interval, and moves JSON event frames in both
// directions.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
	"github.com/gorilla/websocket"
)

// ErrUnavailable is returned by Emit when the outbox is full.
var ErrUnavailable = errors.New("transport unavailable")

// Handler receives connection lifecycle and inbound events. Calls are made
// from the read loop, one at a time.
type Handler interface {
	OnConnect(ctx context.Context)
	OnEvent(ctx context.Context, env protocol.Envelope)
	OnDisconnect(ctx context.Context, err error)
}

type Options struct {
	ReconnectInterval time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
	WriteWait         time.Duration
	OutboxSize        int
	Dialer            *websocket.Dialer
}

func (o Options) withDefaults() Options {
	if o.ReconnectInterval <= 0 {
		o.ReconnectInterval = 3 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.OutboxSize <= 0 {
		o.OutboxSize = 64
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	return o
}

type Client struct {
	url       string
	opts      Options
	outbox    chan []byte
	connected atomic.Bool
	logger    logging.Logger
}

// New returns a client for the server at addr, which is either host:port or
// a ws/wss/http/https URL.
func New(addr string, opts Options, logger logging.Logger) (*Client, error) {
	u, err := URL(addr)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Client{
		url:    u,
		opts:   opts,
		outbox: make(chan []byte, opts.OutboxSize),
		logger: logger.With("module", "transport"),
	}, nil
}

// URL normalizes addr to the websocket endpoint of the server.
func URL(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", errors.New("empty server address")
	}
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}

	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse server address: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", addr)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = common.WebsocketPath
	}
	return u.String(), nil
}

func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Emit queues one event for the server. Nothing is queued while
// disconnected; the next full sync restores the authoritative state.
func (c *Client) Emit(event string, payload any) error {
	if !c.connected.Load() {
		return common.ErrNotConnected
	}

	frame, err := protocol.Encode(event, payload)
	if err != nil {
		return err
	}

	select {
	case c.outbox <- frame:
		return nil
	default:
		return ErrUnavailable
	}
}

// Run connects and reconnects until ctx is cancelled.
func (c *Client) Run(ctx context.Context, h Handler) error {
	t := time.NewTicker(c.opts.ReconnectInterval)
	defer t.Stop()

	for {
		if err := c.runOnce(ctx, h); err != nil && ctx.Err() == nil {
			c.logger.Warn(ctx, "connection lost", "url", c.url, "error", err)
		}

		select {
		case <-ctx.Done():
			c.logger.Info(ctx, "stopping transport")
			return nil
		case <-t.C:
		}
	}
}

func (c *Client) runOnce(ctx context.Context, h Handler) error {
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	connCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop(connCtx, conn)
	}()

	c.connected.Store(true)
	c.logger.Info(ctx, "connected", "url", c.url)
	h.OnConnect(ctx)

	err = c.readLoop(ctx, conn, h)

	c.connected.Store(false)
	cancel()
	wg.Wait()
	c.drain()

	if ctx.Err() != nil {
		err = nil
	}
	h.OnDisconnect(ctx, err)
	return err
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, h Handler) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		env, err := protocol.Decode(data)
		if err != nil {
			c.logger.Debug(ctx, "dropping undecodable frame", "error", err)
			continue
		}
		h.OnEvent(ctx, env)
	}
}

// writeLoop owns all writes on conn. It closes conn when it stops so the
// read loop unblocks.
func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn) {
	ping := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ping.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame := <-c.outbox:
			_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug(ctx, "write failed", "error", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug(ctx, "ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait))
			return
		}
	}
}

// drain discards frames queued for a connection that is gone.
func (c *Client) drain() {
	for {
		select {
		case <-c.outbox:
		default:
			return
		}
	}
}
