// Package observability provides logging, metrics, and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRebuilds counts full feed re-aggregations by trigger.
	FeedRebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meydan_feed_rebuilds_total",
		Help: "Total number of full feed re-aggregations by trigger",
	}, []string{"trigger"})

	// ChangeEventsPublished counts change-feed events published per table and operation.
	ChangeEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meydan_change_events_published_total",
		Help: "Total change-feed events published by table and operation",
	}, []string{"table", "op"})

	// OptimisticRollbacks counts optimistic mutations rolled back after a backend failure.
	OptimisticRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meydan_optimistic_rollbacks_total",
		Help: "Total optimistic view mutations rolled back by operation",
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meydan_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meydan_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// MediaCleanupFailures counts best-effort media removals that failed during post deletion.
	MediaCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meydan_media_cleanup_failures_total",
		Help: "Total best-effort media removals that failed during post deletion",
	})
)
