// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_sessions_started_total",
			Help: "Total number of conversations started",
		},
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_sessions_ended_total",
			Help: "Total number of conversations reaching a terminal state",
		},
		[]string{"outcome"},
	)

	RecommendationsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_recommendations_computed_total",
			Help: "Total number of recommendation rankings computed",
		},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "bot_recommendation_duration_seconds",
			Help: "Duration of a full catalog ranking scan in seconds",
		},
	)

	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_webhook_requests_total",
			Help: "Total number of gateway webhook callbacks by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_gateway_requests_total",
			Help: "Total number of outbound gateway calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bot_gateway_request_duration_seconds",
			Help: "Duration of outbound gateway calls in seconds",
		},
		[]string{"operation"},
	)
)
