// Package observability provides Prometheus collectors and tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OptimisticMutations counts accepted mutation intents by operation.
	OptimisticMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focusgram_optimistic_mutations_total",
		Help: "Total number of optimistic mutations applied locally",
	}, []string{"operation"})

	// BackendWriteFailures counts asynchronous backend writes that failed
	// after the local optimistic update was already applied.
	BackendWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focusgram_backend_write_failures_total",
		Help: "Total number of failed asynchronous backend writes",
	}, []string{"operation"})

	// FeedBuildDuration records view-model build latency.
	FeedBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "focusgram_feed_build_duration_seconds",
		Help:    "Latency of view-model feed builds",
		Buckets: prometheus.DefBuckets,
	})

	// WebSocketConnections is the gauge of active event-stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "focusgram_websocket_connections",
		Help: "Number of active WebSocket event-stream connections",
	})
)
