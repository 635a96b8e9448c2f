package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for reconciliation runs.
type Metrics struct {
	Runs        *prometheus.CounterVec
	Identities  *prometheus.CounterVec
	RunDuration prometheus.Histogram
	Active      prometheus.Gauge
}

// New registers the reconciliation metrics with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discadian_reconcile_runs_total",
			Help: "Reconciliation runs by result",
		}, []string{"result"}),
		Identities: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discadian_reconcile_identities_total",
			Help: "Identities reconciled by outcome",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "discadian_reconcile_run_duration_seconds",
			Help:    "Duration of completed reconciliation runs",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		}),
		Active: f.NewGauge(prometheus.GaugeOpts{
			Name: "discadian_reconcile_active",
			Help: "1 while a reconciliation run is in progress",
		}),
	}
}

func (m *Metrics) ObserveRun(result string, seconds float64) {
	m.Runs.WithLabelValues(result).Inc()
	if result == "completed" {
		m.RunDuration.Observe(seconds)
	}
}

func (m *Metrics) IncrementIdentity(outcome string) {
	m.Identities.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetActive(active bool) {
	if active {
		m.Active.Set(1)
		return
	}
	m.Active.Set(0)
}
