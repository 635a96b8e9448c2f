package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the registry client.
type Metrics struct {
	Requests    *prometheus.CounterVec
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	BudgetWaits *prometheus.CounterVec
	WaitSeconds prometheus.Histogram
}

// New registers the registry metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discadian_registry_requests_total",
			Help: "Outbound registry requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discadian_registry_cache_hits_total",
			Help: "Registry lookups served from the lookup cache",
		}, []string{"kind"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discadian_registry_cache_misses_total",
			Help: "Registry lookups that required an outbound call",
		}, []string{"kind"}),
		BudgetWaits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discadian_registry_budget_waits_total",
			Help: "Times a caller waited for the call budget",
		}, []string{"reason"}),
		WaitSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "discadian_registry_budget_wait_seconds",
			Help:    "Duration of call budget waits",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 5, 15, 30, 60},
		}),
	}
}

func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) IncrementCacheHit(kind string) {
	m.CacheHits.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementCacheMiss(kind string) {
	m.CacheMisses.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveBudgetWait(reason string, seconds float64) {
	m.BudgetWaits.WithLabelValues(reason).Inc()
	m.WaitSeconds.Observe(seconds)
}
