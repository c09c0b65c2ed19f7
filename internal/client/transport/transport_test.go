package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	client        *Client
	connects      chan struct{}
	events        chan protocol.Envelope
	disconnects   chan error
	emitOnConnect string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		connects:    make(chan struct{}, 8),
		events:      make(chan protocol.Envelope, 16),
		disconnects: make(chan error, 8),
	}
}

func (r *recordingHandler) OnConnect(context.Context) {
	if r.emitOnConnect != "" {
		_ = r.client.Emit(r.emitOnConnect, nil)
	}
	r.connects <- struct{}{}
}

func (r *recordingHandler) OnEvent(_ context.Context, env protocol.Envelope) {
	r.events <- env
}

func (r *recordingHandler) OnDisconnect(_ context.Context, err error) {
	r.disconnects <- err
}

// fakeServer upgrades every request and hands the connection to the test.
type fakeServer struct {
	srv   *httptest.Server
	conns chan *websocket.Conn
	mu    sync.Mutex
	paths []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{conns: make(chan *websocket.Conn, 8)}
	upgrader := websocket.Upgrader{}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.paths = append(fs.paths, r.URL.Path)
		fs.mu.Unlock()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.conns <- conn
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-fs.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("client did not connect")
		return nil
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := protocol.Decode(data)
	require.NoError(t, err)
	return env
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		var zero T
		return zero
	}
}

// startClient runs c in the background. The returned stop cancels Run and
// returns its result; it is safe to call more than once.
func startClient(t *testing.T, fs *fakeServer, h *recordingHandler) (*Client, func() error) {
	t.Helper()
	c, err := New(fs.srv.URL, Options{ReconnectInterval: 50 * time.Millisecond}, logging.NewNop())
	require.NoError(t, err)
	h.client = c

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, h) }()

	var (
		once   sync.Once
		runErr error
	)
	stop := func() error {
		once.Do(func() {
			cancel()
			runErr = <-done
		})
		return runErr
	}
	t.Cleanup(func() { _ = stop() })
	return c, stop
}

func TestClient_ConnectEmitAndReceive(t *testing.T) {
	fs := newFakeServer(t)
	h := newRecordingHandler()
	h.emitOnConnect = protocol.EventRequestSync
	c, _ := startClient(t, fs, h)

	conn := fs.accept(t)
	waitFor(t, h.connects)
	assert.True(t, c.Connected())

	env := readEnvelope(t, conn)
	assert.Equal(t, protocol.EventRequestSync, env.Event)

	require.NoError(t, c.Emit(protocol.EventSendHeart, nil))
	env = readEnvelope(t, conn)
	assert.Equal(t, protocol.EventSendHeart, env.Event)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"heart_update","payload":{"count":4}}`)))
	got := waitFor(t, h.events)
	assert.Equal(t, protocol.EventHeartUpdate, got.Event)
	assert.JSONEq(t, `{"count":4}`, string(got.Payload))

	fs.mu.Lock()
	assert.Equal(t, []string{common.WebsocketPath}, fs.paths)
	fs.mu.Unlock()
}

func TestClient_SkipsUndecodableFrames(t *testing.T) {
	fs := newFakeServer(t)
	h := newRecordingHandler()
	_, _ = startClient(t, fs, h)

	conn := fs.accept(t)
	waitFor(t, h.connects)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"payload":1}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"typing","payload":{"user":"Ann","isTyping":true}}`)))

	got := waitFor(t, h.events)
	assert.Equal(t, protocol.EventTyping, got.Event)
}

func TestClient_ReconnectsAfterServerDrop(t *testing.T) {
	fs := newFakeServer(t)
	h := newRecordingHandler()
	c, _ := startClient(t, fs, h)

	first := fs.accept(t)
	waitFor(t, h.connects)
	require.NoError(t, first.Close())

	err := waitFor(t, h.disconnects)
	assert.Error(t, err)

	fs.accept(t)
	waitFor(t, h.connects)
	assert.Eventually(t, c.Connected, 2*time.Second, 10*time.Millisecond)
}

func TestClient_RunStopsOnCancel(t *testing.T) {
	fs := newFakeServer(t)
	h := newRecordingHandler()
	c, stop := startClient(t, fs, h)

	fs.accept(t)
	waitFor(t, h.connects)

	require.NoError(t, stop())

	assert.NoError(t, waitFor(t, h.disconnects))
	assert.False(t, c.Connected())
}

func TestClient_EmitWhileDisconnected(t *testing.T) {
	c, err := New("127.0.0.1:1", Options{}, logging.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, c.Emit(protocol.EventSendHeart, nil), common.ErrNotConnected)
}

func TestClient_EmitOutboxFull(t *testing.T) {
	c, err := New("127.0.0.1:1", Options{OutboxSize: 1}, logging.NewNop())
	require.NoError(t, err)
	c.connected.Store(true)

	require.NoError(t, c.Emit(protocol.EventSendHeart, nil))
	assert.ErrorIs(t, c.Emit(protocol.EventSendHeart, nil), ErrUnavailable)

	c.drain()
	assert.NoError(t, c.Emit(protocol.EventSendHeart, nil))
}

func TestClient_EmitEncodeError(t *testing.T) {
	c, err := New("127.0.0.1:1", Options{}, logging.NewNop())
	require.NoError(t, err)
	c.connected.Store(true)

	err = c.Emit(protocol.EventSendMessage, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}

func TestClient_DialFailureKeepsRetrying(t *testing.T) {
	fs := newFakeServer(t)
	addr := strings.TrimPrefix(fs.srv.URL, "http://")
	fs.srv.Close()

	c, err := New(addr, Options{ReconnectInterval: 10 * time.Millisecond}, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	h := newRecordingHandler()
	require.NoError(t, c.Run(ctx, h))
	assert.Empty(t, h.connects)
	assert.False(t, c.Connected())
}

func TestURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "127.0.0.1:8080", want: "ws://127.0.0.1:8080/ws"},
		{in: "ws://example.com", want: "ws://example.com/ws"},
		{in: "http://example.com:80/", want: "ws://example.com:80/ws"},
		{in: "https://example.com", want: "wss://example.com/ws"},
		{in: "wss://example.com/socket", want: "wss://example.com/socket"},
		{in: "ftp://example.com", wantErr: true},
		{in: "", wantErr: true},
		{in: "ws://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := URL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
