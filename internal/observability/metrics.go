package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesisrepo_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thesisrepo_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CommentsSubmitted counts accepted comment submissions by initial status.
	CommentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesisrepo_comments_submitted_total",
		Help: "Total number of comments submitted, by initial moderation status",
	}, []string{"status"})

	// CommentsDeleted counts comment rows removed by subtree deletion.
	CommentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesisrepo_comments_deleted_total",
		Help: "Total number of comment rows removed, replies included",
	})

	// CommentsModerated counts moderation decisions by resulting status.
	CommentsModerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesisrepo_comments_moderated_total",
		Help: "Total number of moderation decisions",
	}, []string{"status"})

	// CitationEvents counts citation detail rows added or removed.
	CitationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesisrepo_citation_events_total",
		Help: "Total number of citation rows added or removed",
	}, []string{"action"})

	// ViewsRecorded counts thesis view events.
	ViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesisrepo_views_recorded_total",
		Help: "Total number of thesis views recorded",
	})

	// ImpactScore observes computed impact scores.
	ImpactScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "thesisrepo_impact_score",
		Help:    "Distribution of computed thesis impact scores",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	// ActiveWebSockets tracks open notification sockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thesisrepo_active_websockets",
		Help: "Number of open notification WebSocket connections",
	})

	// ThreadCyclesCut counts parent links dropped while building comment trees.
	ThreadCyclesCut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesisrepo_thread_cycles_cut_total",
		Help: "Total number of comment parent links cut to break cycles",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
