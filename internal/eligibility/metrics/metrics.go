package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for eligibility evaluations.
type Metrics struct {
	Decisions    *prometheus.CounterVec
	PathDegraded *prometheus.CounterVec
	PathDuration *prometheus.HistogramVec
}

// New registers and returns eligibility metrics collectors.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agegate_eligibility_decisions_total",
			Help: "Total number of eligibility decisions, by outcome",
		}, []string{"outcome"}),
		PathDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agegate_eligibility_path_degraded_total",
			Help: "Total number of trust path failures absorbed during evaluation",
		}, []string{"path"}),
		PathDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agegate_eligibility_path_duration_ms",
			Help:    "Duration of per-path eligibility checks in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"path"}),
	}
}

func (m *Metrics) IncrementDecisions(outcome string) {
	m.Decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementPathDegraded(path string) {
	m.PathDegraded.WithLabelValues(path).Inc()
}

func (m *Metrics) ObservePathDuration(path string, durationMs float64) {
	m.PathDuration.WithLabelValues(path).Observe(durationMs)
}
