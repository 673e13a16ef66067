package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentapi_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talentapi_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentapi_http_requests_rate_limited_total",
			Help: "Total number of HTTP requests rejected by the rate limiter",
		},
	)

	// DependencyUp is 1 when the last readiness probe of a dependency succeeded
	DependencyUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "talentapi_dependency_up",
			Help: "Whether an external dependency answered its last readiness probe",
		},
		[]string{"dependency"},
	)
)
