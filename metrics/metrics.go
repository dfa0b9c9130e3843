// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flipbook_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flipbook_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flipbook_store_errors_total",
			Help: "Failed document store calls by operation",
		},
		[]string{"operation"},
	)

	// ProjectViewFailures counts best-effort project view increments that
	// failed without affecting the response.
	ProjectViewFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flipbook_project_view_failures_total",
			Help: "Project view analytics writes that failed",
		},
	)

	ShareIDCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flipbook_share_id_collisions_total",
			Help: "Project inserts retried because the generated shareId was taken",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flipbook_rate_limited_requests_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)
)
