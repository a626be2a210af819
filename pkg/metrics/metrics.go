// Package metrics exposes Prometheus instrumentation for the submission
// pipeline: queue depth, settlement outcomes, and poll back-off.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. A Metrics is safe
// for concurrent use by every worker stage.
type Metrics struct {
	Registry *prometheus.Registry

	Submitted          prometheus.Counter
	Settled            *prometheus.CounterVec
	PollBackoffSeconds prometheus.Histogram
	QueueDepth         *prometheus.GaugeVec
}

// New builds a Metrics with its own private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwave_client",
			Name:      "problems_submitted_total",
			Help:      "Total number of problems accepted for submission.",
		}),
		Settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwave_client",
			Name:      "futures_settled_total",
			Help:      "Total number of futures settled, labeled by outcome.",
		}, []string{"outcome"}),
		PollBackoffSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwave_client",
			Name:      "poll_backoff_seconds",
			Help:      "Distribution of poll back-off intervals used.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 60},
		}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dwave_client",
			Name:      "queue_depth",
			Help:      "Approximate number of items waiting in a pipeline queue.",
		}, []string{"stage"}),
	}

	reg.MustRegister(m.Submitted, m.Settled, m.PollBackoffSeconds, m.QueueDepth)
	return m
}

// SettleOutcome labels a settlement for the Settled counter: "result" for
// a successful settlement, or the apierrors.Kind string for a failure.
func (m *Metrics) SettleOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Settled.WithLabelValues(outcome).Inc()
}
