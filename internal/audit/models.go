package audit

import (
	"time"

	id "agegate/pkg/domain"
)

// Event is emitted from domain logic to capture key protocol actions. Keep
// it transport-agnostic so stores and sinks can fan out; the JSON shape is
// what the Kafka sink publishes.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	Tick              id.Tick   `json:"tick"`
	Principal         string    `json:"principal,omitempty"`
	Subject           string    `json:"subject,omitempty"`
	Action            string    `json:"action"`
	Decision          string    `json:"decision,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	RequestID         string    `json:"request_id,omitempty"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
}

type AuditEvent string

const (
	EventCommitmentCreated     AuditEvent = "commitment_created"
	EventProofSubmitted        AuditEvent = "proof_submitted"
	EventProofRejected         AuditEvent = "proof_rejected"
	EventVerificationValidated AuditEvent = "verification_validated"
	EventVerificationRejected  AuditEvent = "verification_rejected"
	EventVerificationRevoked   AuditEvent = "verification_revoked"
	EventRangeProofDerived     AuditEvent = "range_proof_derived"
	EventAttestationCreated    AuditEvent = "attestation_created"
	EventAttestationRevoked    AuditEvent = "attestation_revoked"
	EventVerifierUpdated       AuditEvent = "verifier_updated"
	EventFeeUpdated            AuditEvent = "fee_updated"
	EventBondUpdated           AuditEvent = "bond_updated"
	EventFeesWithdrawn         AuditEvent = "fees_withdrawn"
	EventEligibilityEvaluated  AuditEvent = "eligibility_evaluated"
)
