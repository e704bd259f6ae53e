// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alphaboard_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedCompositions counts feed compositions by interval.
	FeedCompositions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alphaboard_feed_compositions_total",
		Help: "Total number of feed compositions by promoted-slot interval",
	}, []string{"interval"})

	// LikeReconciliations counts like mutations by outcome
	// (committed, reconciled, rolled_back).
	LikeReconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alphaboard_like_mutations_total",
		Help: "Total number of like/unlike mutations by outcome",
	}, []string{"outcome"})

	// ActiveWebSockets is the gauge of open WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alphaboard_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alphaboard_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// AssistantRequests counts assistant chat requests by outcome.
	AssistantRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alphaboard_assistant_requests_total",
		Help: "Total number of assistant chat requests by outcome",
	}, []string{"outcome"})
)
