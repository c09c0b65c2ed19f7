package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
	"github.com/dmitrijs2005/weddingportal/internal/server/hub"
	"github.com/dmitrijs2005/weddingportal/internal/server/metrics"
	"github.com/dmitrijs2005/weddingportal/internal/server/relay"
	"github.com/dmitrijs2005/weddingportal/internal/server/store"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	store *store.Store
	hub   *hub.Hub
	srv   *httptest.Server
}

func newStack(t *testing.T, origins []string) *stack {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := logging.NewNop()

	st := store.New(store.Caps{})
	h := hub.New(hub.Options{}, m, logger)
	rl := relay.New(st, h, m, logger)

	srv := httptest.NewServer(NewServer(ctx, h, rl, st, reg, origins, logger).Router())
	t.Cleanup(func() {
		cancel()
		h.Close()
		srv.Close()
	})
	return &stack{store: st, hub: h, srv: srv}
}

func (s *stack) wsURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
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

func TestHealthz(t *testing.T) {
	s := newStack(t, []string{"*"})

	resp, err := http.Get(s.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSnapshotEndpoint(t *testing.T) {
	s := newStack(t, []string{"*"})
	s.store.Heart()
	s.store.Join(models.GuestEntry{Name: "ann"})

	resp, err := http.Get(s.srv.URL + "/api/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap models.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, int64(1), snap.HeartCount)
	require.Len(t, snap.Guests, 1)
	assert.Equal(t, "ann", snap.Guests[0].Name)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newStack(t, []string{"*"})

	resp, err := http.Post(s.srv.URL+"/api/snapshot", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebsocket_EndToEnd(t *testing.T) {
	s := newStack(t, []string{"*"})

	a, _, err := websocket.DefaultDialer.Dial(s.wsURL(), nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, protocol.EventFullSync, readEnvelope(t, a).Event)

	b, _, err := websocket.DefaultDialer.Dial(s.wsURL(), nil)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, protocol.EventFullSync, readEnvelope(t, b).Event)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"event":"add_heart"}`)))

	for _, c := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, c)
		assert.Equal(t, protocol.EventHeartUpdate, env.Event)
		assert.JSONEq(t, `{"count":1}`, string(env.Payload))
	}

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"event":"typing","payload":{"user":"ann","isTyping":true}}`)))
	env := readEnvelope(t, b)
	assert.Equal(t, protocol.EventTyping, env.Event)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"event":"request_sync"}`)))
	env = readEnvelope(t, a)
	assert.Equal(t, protocol.EventFullSync, env.Event, "typing is not echoed to its sender")

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(env.Payload, &snap))
	assert.Equal(t, int64(1), snap.HeartCount)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newStack(t, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL(), nil)
	require.NoError(t, err)
	defer conn.Close()
	readEnvelope(t, conn)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"add_heart"}`)))
	readEnvelope(t, conn)

	scrape := func() string {
		resp, err := http.Get(s.srv.URL + "/metrics")
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	assert.Eventually(t, func() bool {
		body := scrape()
		return strings.Contains(body, `portal_relay_events_total{event="add_heart"} 1`) &&
			strings.Contains(body, `portal_hub_clients 1`)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://wedding.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "no origin header")

	req.Header.Set("Origin", "https://wedding.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

func TestWebsocket_RejectsForeignOrigin(t *testing.T) {
	s := newStack(t, []string{"https://wedding.example"})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(s.wsURL(), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
