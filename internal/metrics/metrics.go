// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CompletionsTotal counts successful completions by kind (mission, resource)
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambassador_completions_total",
			Help: "Total number of mission and resource completions",
		},
		[]string{"kind"},
	)

	// PointsAwardedTotal sums points credited, by source (mission, resource, admin)
	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambassador_points_awarded_total",
			Help: "Total number of points credited to ambassadors",
		},
		[]string{"kind"},
	)

	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ambassador_registrations_total",
			Help: "Total number of ambassador registrations",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	IdempotentReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_idempotent_replays_total",
			Help: "Total number of responses replayed for a repeated Idempotency-Key",
		},
	)

	// DBQueryDuration observes SurrealDB round trips by outcome (ok, error)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surrealdb_query_duration_seconds",
			Help:    "Histogram of SurrealDB query durations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"outcome"},
	)

	DBConnectAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "surrealdb_connect_attempts_total",
			Help: "Total number of SurrealDB connection attempts",
		},
	)

	MissionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "missions_expired_total",
			Help: "Total number of missions moved to Expired by the expiry job",
		},
	)
)

// Labels for DBQueryDuration
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Labels for CompletionsTotal and PointsAwardedTotal
const (
	KindMission  = "mission"
	KindResource = "resource"
	KindAdmin    = "admin"
)
