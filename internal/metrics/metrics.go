// Package metrics provides Prometheus instrumentation for the chat
// application. It exposes gauges for connection and room counts, counters for
// message throughput, and histograms for latency tracking.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal tracks the current number of active WebSocket connections.
	ConnectionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_total",
		Help: "Current number of active WebSocket connections",
	})

	// MessagesTotal counts the total number of messages processed, labeled by
	// type: "public", "private", or "reaction".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total number of messages processed",
	}, []string{"type"}) // type = "public", "private", "reaction"

	// IntentLatency records client intent processing latency in seconds.
	IntentLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_intent_latency_seconds",
		Help:    "Client intent processing latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// TypingUsers tracks the current number of users marked as typing.
	TypingUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_typing_users",
		Help: "Current number of users marked as typing",
	})

	// ActiveRooms tracks the current number of rooms with at least one member.
	ActiveRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_active_rooms",
		Help: "Current number of rooms with at least one member",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsTotal,
		MessagesTotal,
		IntentLatency,
		TypingUsers,
		ActiveRooms,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
