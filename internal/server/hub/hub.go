// Package hub owns the server side of the transport channel: one websocket
// per client, a reader that hands frames to a Handler in arrival order and a
// writer draining a bounded send queue.
package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/server/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler receives connection lifecycle events and inbound frames. Calls for
// one connection are never concurrent.
type Handler interface {
	OnConnect(ctx context.Context, connID string)
	OnMessage(ctx context.Context, connID string, data []byte)
	OnDisconnect(ctx context.Context, connID string)
}

type Options struct {
	MaxMessageSize int64
	PongWait       time.Duration
	PingPeriod     time.Duration
	WriteWait      time.Duration
	SendBuffer     int
}

func (o Options) withDefaults() Options {
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	return o
}

var ErrClosed = errors.New("hub closed")

type Hub struct {
	opts    Options
	logger  logging.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

func New(opts Options, m *metrics.Metrics, logger logging.Logger) *Hub {
	return &Hub{
		opts:    opts.withDefaults(),
		logger:  logger.With("module", "hub"),
		metrics: m,
		clients: make(map[string]*client),
	}
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Serve runs one connection until it fails, the peer goes away or ctx is
// cancelled. It always closes conn.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, handler Handler) error {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.opts.SendBuffer),
		done: make(chan struct{}),
	}

	if err := h.register(c); err != nil {
		_ = conn.Close()
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writePump(ctx, c)
	}()

	handler.OnConnect(ctx, c.id)
	err := h.readPump(ctx, c, handler)

	h.unregister(c)
	c.close()
	wg.Wait()
	_ = conn.Close()

	handler.OnDisconnect(ctx, c.id)
	return err
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.clients[c.id] = c
	h.metrics.ClientConnected()
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		h.metrics.ClientDisconnected()
	}
}

func (h *Hub) readPump(ctx context.Context, c *client, handler Handler) error {
	if h.opts.MaxMessageSize > 0 {
		c.conn.SetReadLimit(h.opts.MaxMessageSize)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn(ctx, "connection lost", "conn", c.id, "error", err)
				return err
			}
			return nil
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		handler.OnMessage(ctx, c.id, data)
	}
}

func (h *Hub) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(h.opts.PingPeriod)
	defer ticker.Stop()
	// unblocks readPump
	defer c.conn.Close()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logger.Debug(ctx, "write failed", "conn", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.opts.WriteWait))
			return
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(h.opts.WriteWait))
			return
		}
	}
}

// enqueue never blocks. A client whose queue is full is disconnected; it will
// resync on reconnect.
func (h *Hub) enqueue(c *client, frame []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- frame:
	default:
		h.logger.Warn(context.Background(), "dropping slow client", "conn", c.id)
		h.metrics.SlowClientDropped()
		c.close()
	}
}

// Broadcast queues frame for every connection.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.enqueue(c, frame)
	}
}

// BroadcastExcept queues frame for every connection but connID.
func (h *Hub) BroadcastExcept(connID string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if id != connID {
			h.enqueue(c, frame)
		}
	}
}

// Send queues frame for one connection. Unknown ids are ignored.
func (h *Hub) Send(connID string, frame []byte) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if ok {
		h.enqueue(c, frame)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, c := range h.clients {
		c.close()
	}
}
