package eligibility

import (
	"time"

	id "agegate/pkg/domain"
)

// Outcome enumerates the possible eligibility decisions.
type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
)

// Reason encodes which rule produced the decision.
type Reason string

const (
	// ReasonVerificationPath: the subject's own validated verification vouches.
	ReasonVerificationPath Reason = "verification_path"
	// ReasonAttestationPath: a verifier's standing attestation vouches.
	ReasonAttestationPath Reason = "attestation_path"
	// ReasonNotEligible: every consulted path answered and none vouched.
	ReasonNotEligible Reason = "not_eligible"
	// ReasonPathsUnavailable: every consulted path degraded, so nothing could vouch.
	ReasonPathsUnavailable Reason = "paths_unavailable"
)

// EvaluateRequest is the domain-level input for an eligibility evaluation.
type EvaluateRequest struct {
	Subject   id.Principal
	Threshold uint64

	// Attester selects the attestation path; when empty only the subject's
	// own verification record is consulted.
	Attester id.Principal
}

// PathResult captures what a single trust path reported.
type PathResult struct {
	// Consulted is false for paths the request did not select.
	Consulted bool `json:"consulted"`
	Passed    bool `json:"passed"`
	// Degraded marks a path that errored and was treated as not vouching.
	Degraded bool          `json:"degraded"`
	Latency  time.Duration `json:"latency_ms"`
}

// Decision is the structured outcome of an eligibility evaluation. It carries
// per-path evidence so relying parties can tell a denial from an outage.
type Decision struct {
	Outcome      Outcome    `json:"outcome"`
	Reason       Reason     `json:"reason"`
	Threshold    uint64     `json:"threshold"`
	Verification PathResult `json:"verification"`
	Attestation  PathResult `json:"attestation"`
	EvaluatedAt  id.Tick    `json:"evaluated_at"`
}

// Eligible reports whether the decision allows the subject through.
func (d *Decision) Eligible() bool { return d.Outcome == OutcomeAllow }
