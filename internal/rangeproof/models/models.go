package models

import (
	id "agegate/pkg/domain"
)

// Proof is the queryable artifact derived from a validated verification.
// One proof exists per subject at a time; each successful derivation
// overwrites the previous one. Proofs have no identity of their own, they
// are a projection of the subject's verification record at derivation time.
type Proof struct {
	Subject        id.Principal
	MinAgeVerified uint64
	MaxAgeVerified uint64
	ProofHash      []byte
	VerifiedAt     id.Tick
	ExpiresAt      id.Tick
}

// ExpiredAt reports whether the proof is stale at the given tick.
func (p *Proof) ExpiredAt(now id.Tick) bool {
	return now > p.ExpiresAt
}
