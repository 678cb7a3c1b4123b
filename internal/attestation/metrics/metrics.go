package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the attestation trust path.
type Metrics struct {
	Issued  prometheus.Counter
	Revoked prometheus.Counter
	Checks  *prometheus.CounterVec
}

// New registers and returns attestation metrics collectors.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_attestations_issued_total",
			Help: "Total number of attestations issued by verifiers",
		}),
		Revoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_attestations_revoked_total",
			Help: "Total number of attestations revoked by their attester",
		}),
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agegate_attestation_checks_total",
			Help: "Total number of attestation checks, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.Issued.Inc()
}

func (m *Metrics) IncrementRevoked() {
	m.Revoked.Inc()
}

func (m *Metrics) IncrementChecks(outcome string) {
	m.Checks.WithLabelValues(outcome).Inc()
}
