package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the patient directory.
type Metrics struct {
	SearchRequests *prometheus.CounterVec
	SearchLatency  prometheus.Histogram
	SearchMatches  prometheus.Histogram
	RecordsLoaded  prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates and registers all collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SearchRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "patientlist_search_requests_total",
			Help: "Total number of patient searches, labeled by outcome",
		}, []string{"outcome"}),
		SearchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "patientlist_search_latency_seconds",
			Help:    "Time spent executing patient searches in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SearchMatches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "patientlist_search_matches",
			Help:    "Number of records matching a search before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		RecordsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "patientlist_records_loaded",
			Help: "Number of patient records in the served snapshot",
		}),
		gatherer: reg,
	}
}

// ObserveSearch records one search. Safe on a nil receiver.
func (m *Metrics) ObserveSearch(elapsed time.Duration, total int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SearchRequests.WithLabelValues(outcome).Inc()
	m.SearchLatency.Observe(elapsed.Seconds())
	if err == nil {
		m.SearchMatches.Observe(float64(total))
	}
}

// SetRecordsLoaded publishes the snapshot size. Safe on a nil receiver.
func (m *Metrics) SetRecordsLoaded(n int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
