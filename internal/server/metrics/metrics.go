// Package metrics exposes Prometheus collectors for the portal server.
package metrics

import (
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// Metrics groups the server collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	events      *prometheus.CounterVec
	malformed   *prometheus.CounterVec
	broadcasts  *prometheus.CounterVec
	dropped     prometheus.Counter
	clients     prometheus.Gauge
	handleDelay prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "events_total",
			Help:      "Inbound events by name.",
		}, []string{"event"}),
		malformed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "malformed_payloads_total",
			Help:      "Inbound events ignored because the payload did not decode.",
		}, []string{"event"}),
		broadcasts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "broadcasts_total",
			Help:      "Outbound frames fanned out, by event name.",
		}, []string{"event"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "slow_clients_dropped_total",
			Help:      "Connections closed because their send buffer was full.",
		}),
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "clients",
			Help:      "Currently connected websocket clients.",
		}),
		handleDelay: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "handle_duration_seconds",
			Help:      "Time spent applying one inbound event.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// eventLabel keeps label cardinality bounded to the known event names.
func eventLabel(name string) string {
	if protocol.IsClientEvent(name) {
		return name
	}
	return "unknown"
}

func (m *Metrics) Event(name string, took time.Duration) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventLabel(name)).Inc()
	m.handleDelay.Observe(took.Seconds())
}

func (m *Metrics) Malformed(name string) {
	if m == nil {
		return
	}
	m.malformed.WithLabelValues(eventLabel(name)).Inc()
}

func (m *Metrics) Broadcast(name string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(name).Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.clients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.clients.Dec()
}

func (m *Metrics) SlowClientDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
