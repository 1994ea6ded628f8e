package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_risk"

// Fetch outcomes. "empty" is a successful fetch that carried no events.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for the feed poller, alert log and auth routes.
type Metrics struct {
	FeedFetches       *prometheus.CounterVec // labels: outcome={success,empty,error}
	FeedFetchDuration prometheus.Histogram
	SnapshotEvents    prometheus.Gauge
	AlertsRecorded    *prometheus.CounterVec // labels: severity={info,warning,critical}
	AuthAttempts      *prometheus.CounterVec // labels: action={register,login}, outcome
}

func newCollectors() *Metrics {
	return &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_total",
			Help:      "Earthquake feed fetches by outcome.",
		}, []string{"outcome"}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a single earthquake feed request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		SnapshotEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_events",
			Help:      "Number of earthquakes in the latest snapshot.",
		}),
		AlertsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_recorded_total",
			Help:      "Alerts written to the alert log by severity.",
		}, []string{"severity"}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by outcome.",
		}, []string{"action", "outcome"}),
	}
}

// NewMetrics creates all collectors and registers them with the default registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchDuration,
		m.SnapshotEvents,
		m.AlertsRecorded,
		m.AuthAttempts,
	)
	return m
}

// NewMetricsForTesting returns unregistered collectors so tests can build
// as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}
