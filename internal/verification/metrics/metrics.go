package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for verification lifecycle operations.
type Metrics struct {
	CommitmentsCreated prometheus.Counter
	ProofsSubmitted    prometheus.Counter
	ProofsAccepted     prometheus.Counter
	ProofsRejected     prometheus.Counter
	Validations        *prometheus.CounterVec
	Revocations        prometheus.Counter
	RangeProofsDerived prometheus.Counter

	BondsPostedTotal    prometheus.Counter
	BondsRefundedTotal  prometheus.Counter
	BondsForfeitedTotal prometheus.Counter
	FeesCollectedTotal  prometheus.Counter

	ThresholdChecks     *prometheus.CounterVec
	DeviceDrift         prometheus.Counter
	SubmitProofDuration prometheus.Histogram
}

// New registers and returns verification metrics collectors.
func New() *Metrics {
	return &Metrics{
		CommitmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_commitments_created_total",
			Help: "Total number of age commitments created",
		}),
		ProofsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_proofs_submitted_total",
			Help: "Total number of age proofs submitted",
		}),
		ProofsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_proofs_accepted_total",
			Help: "Total number of age proofs that passed the reveal predicate",
		}),
		ProofsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_proofs_rejected_total",
			Help: "Total number of age proofs that failed the reveal predicate",
		}),
		Validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agegate_validations_total",
			Help: "Total number of verifier validation decisions",
		}, []string{"decision"}),
		Revocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_revocations_total",
			Help: "Total number of emergency revocations",
		}),
		RangeProofsDerived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_range_proofs_derived_total",
			Help: "Total number of age range proofs derived",
		}),

		BondsPostedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_bonds_posted_amount_total",
			Help: "Cumulative amount of fraud bonds moved into escrow",
		}),
		BondsRefundedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_bonds_refunded_amount_total",
			Help: "Cumulative amount of fraud bonds refunded to subjects",
		}),
		BondsForfeitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_bonds_forfeited_amount_total",
			Help: "Cumulative amount of fraud bonds forfeited on failed or rejected proofs",
		}),
		FeesCollectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_fees_collected_amount_total",
			Help: "Cumulative amount of verification fees collected",
		}),

		ThresholdChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agegate_threshold_checks_total",
			Help: "Total number of age threshold checks, by outcome",
		}, []string{"outcome"}),
		DeviceDrift: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agegate_device_drift_total",
			Help: "Total number of proofs revealed from a different device than the commitment",
		}),
		SubmitProofDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agegate_submit_proof_duration_ms",
			Help:    "Duration of proof submissions in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *Metrics) IncrementCommitmentsCreated() {
	m.CommitmentsCreated.Inc()
}

func (m *Metrics) IncrementProofsSubmitted() {
	m.ProofsSubmitted.Inc()
}

func (m *Metrics) IncrementProofsAccepted() {
	m.ProofsAccepted.Inc()
}

func (m *Metrics) IncrementProofsRejected() {
	m.ProofsRejected.Inc()
}

func (m *Metrics) IncrementValidations(decision string) {
	m.Validations.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncrementRevocations() {
	m.Revocations.Inc()
}

func (m *Metrics) IncrementRangeProofsDerived() {
	m.RangeProofsDerived.Inc()
}

func (m *Metrics) AddBondsPosted(amount uint64) {
	m.BondsPostedTotal.Add(float64(amount))
}

func (m *Metrics) AddBondsRefunded(amount uint64) {
	m.BondsRefundedTotal.Add(float64(amount))
}

func (m *Metrics) AddBondsForfeited(amount uint64) {
	m.BondsForfeitedTotal.Add(float64(amount))
}

func (m *Metrics) AddFeesCollected(amount uint64) {
	m.FeesCollectedTotal.Add(float64(amount))
}

func (m *Metrics) IncrementThresholdChecks(outcome string) {
	m.ThresholdChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementDeviceDrift() {
	m.DeviceDrift.Inc()
}

func (m *Metrics) ObserveSubmitProofDuration(durationMs float64) {
	m.SubmitProofDuration.Observe(durationMs)
}
