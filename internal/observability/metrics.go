package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEvents counts session transitions by event and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_auth_events_total",
		Help: "Total authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// ContentMutations counts post, comment and like mutations.
	ContentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_content_mutations_total",
		Help: "Total content mutations by resource and action",
	}, []string{"resource", "action"})

	// PostViews counts post detail reads.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_post_views_total",
		Help: "Total number of post detail views",
	})

	// CacheLookups counts cache-aside lookups by keyspace and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Cache-aside lookups by keyspace and result",
	}, []string{"keyspace", "result"})
)

// RecordAuthEvent increments the auth event counter. A nil err counts as success.
func RecordAuthEvent(event string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthEvents.WithLabelValues(event, outcome).Inc()
}

// RecordMutation increments the content mutation counter.
func RecordMutation(resource, action string) {
	ContentMutations.WithLabelValues(resource, action).Inc()
}

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
