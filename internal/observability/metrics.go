// Package observability holds the Prometheus collectors and OpenTelemetry tracer.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prompthub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prompthub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheRequests counts cache lookups by cache key family and result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prompthub_cache_requests_total",
		Help: "Cache lookups by key family and result",
	}, []string{"cache", "result"})

	// InteractionToggles counts like/bookmark toggles by kind and resulting state.
	InteractionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prompthub_interaction_toggles_total",
		Help: "Like and bookmark toggles by kind and resulting state",
	}, []string{"kind", "state"})

	// PostsCreated counts successfully created posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompthub_posts_created_total",
		Help: "Total number of posts created",
	})

	// GeolocationLookups counts IP geolocation attempts by outcome.
	GeolocationLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prompthub_geolocation_lookups_total",
		Help: "IP geolocation lookups by result",
	}, []string{"result"})
)

// DatabaseMetrics records query latency for one repository.
type DatabaseMetrics struct {
	table string
}

// NewDatabaseMetrics returns a DatabaseMetrics bound to table.
func NewDatabaseMetrics(table string) *DatabaseMetrics {
	return &DatabaseMetrics{table: table}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, m.table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, start)
	}
}
