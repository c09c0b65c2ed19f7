// Package api wires the portal's HTTP surface: the websocket transport,
// a read-only snapshot endpoint, health and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/server/hub"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshotter exposes the current shared state.
type Snapshotter interface {
	Snapshot() models.Snapshot
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	ctx      context.Context
	hub      *hub.Hub
	handler  hub.Handler
	state    Snapshotter
	gatherer prometheus.Gatherer
	logger   logging.Logger
	upgrader websocket.Upgrader
}

// NewServer builds the handlers. ctx bounds the lifetime of websocket
// connections; cancelling it closes them.
func NewServer(ctx context.Context, h *hub.Hub, handler hub.Handler, state Snapshotter,
	gatherer prometheus.Gatherer, allowedOrigins []string, logger logging.Logger) *Server {

	return &Server{
		ctx:      ctx,
		hub:      h,
		handler:  handler,
		state:    state,
		gatherer: gatherer,
		logger:   logger.With("module", "api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Router returns the mux router with logging middleware attached.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.Methods(http.MethodGet).Path(common.WebsocketPath).HandlerFunc(s.serveWS)
	r.Methods(http.MethodGet).Path("/api/snapshot").HandlerFunc(s.getSnapshot)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(healthz)
	r.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Debug(r.Context(), "handled",
			"method", r.Method, "url", r.URL.String(), "duration", m.Duration, "status", m.Code)
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "failed to upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	if err := s.hub.Serve(s.ctx, conn, s.handler); err != nil {
		s.logger.Debug(s.ctx, "connection ended", "remote", r.RemoteAddr, "error", err)
	}
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and, unless "*" is listed, only the given origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
