package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mdd_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthAttempts counts login and registration attempts by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdd_auth_attempts_total",
		Help: "Login and registration attempts by kind and outcome",
	}, []string{"kind", "outcome"})

	// SubscriptionChanges counts subscribe/unsubscribe calls that changed state.
	SubscriptionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdd_subscription_changes_total",
		Help: "Subscription state changes by action",
	}, []string{"action"})

	// ArticlesPublished counts created articles.
	ArticlesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdd_articles_published_total",
		Help: "Total number of articles created",
	})

	// FeedEventsDelivered counts realtime feed events pushed to clients.
	FeedEventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdd_feed_events_delivered_total",
		Help: "Realtime feed events by delivery outcome",
	}, []string{"outcome"})
)

// TrackQuery returns a func recording the elapsed query time when called, typically deferred.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordAuthAttempt increments AuthAttempts for kind ("login", "register").
func RecordAuthAttempt(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthAttempts.WithLabelValues(kind, outcome).Inc()
}
