// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests by outcome",
		},
		[]string{"outcome"},
	)

	RateLimitDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_denied_total",
			Help: "Total number of requests denied by the rate limiter",
		},
	)

	StreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "chat_stream_duration_seconds",
			Help: "Duration of streamed chat responses in seconds",
		},
	)

	Bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_bookings_total",
			Help: "Total number of reservation booking attempts by status",
		},
		[]string{"status"},
	)
)
