package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wavelength_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavelength_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// ChannelSubscriptions is the gauge of live channel subscriptions by family.
	ChannelSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wavelength_channel_subscriptions",
		Help: "Number of live channel subscriptions by channel family",
	}, []string{"family"})

	// EventsBroadcastTotal counts events fanned out to connected clients by event name.
	EventsBroadcastTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavelength_events_broadcast_total",
		Help: "Total realtime events broadcast to local subscribers",
	}, []string{"event"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavelength_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// NotificationsCreatedTotal counts ledger entries written by kind.
	NotificationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavelength_notifications_created_total",
		Help: "Total notifications persisted to the ledger by kind",
	}, []string{"kind"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
