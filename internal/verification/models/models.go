package models

import (
	id "agegate/pkg/domain"
)

// Status is the lifecycle state of a subject's verification record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
	StatusRevoked   Status = "revoked"

	// StatusExpired is computed at read time only. Stored records never
	// transition to expired; staleness is derived from the proof timestamp
	// on every query.
	StatusExpired Status = "expired"
)

// Record is a subject's single live verification slot. It is overwritten,
// never appended: each state transition replaces the previous record, and
// creating a new commitment replaces the record wholesale, discarding any
// prior outcome.
type Record struct {
	VerificationID id.VerificationID
	Subject        id.Principal
	AgeThreshold   uint64
	Digest         []byte
	ProofTimestamp id.Tick
	Verifier       *id.Principal
	Status         Status
	ChallengeNonce string
	BondAmount     uint64
}

// EffectiveStatus reports the status visible to readers at the given tick.
// Verified and validated records go stale once the validity window lapses;
// every other status is reported as stored.
func (r *Record) EffectiveStatus(now id.Tick, validityPeriod uint64) Status {
	if (r.Status == StatusVerified || r.Status == StatusValidated) && !r.Fresh(now, validityPeriod) {
		return StatusExpired
	}
	return r.Status
}

// Fresh reports whether the proof timestamp is still inside the validity
// window at the given tick.
func (r *Record) Fresh(now id.Tick, validityPeriod uint64) bool {
	return now.Since(r.ProofTimestamp) < validityPeriod
}

// Satisfies reports whether this record vouches for the given threshold at
// the given tick: the proof must have been accepted (verified or validated),
// must cover at least the asked threshold, and must still be fresh.
func (r *Record) Satisfies(threshold uint64, now id.Tick, validityPeriod uint64) bool {
	if r.Status != StatusVerified && r.Status != StatusValidated {
		return false
	}
	return r.AgeThreshold >= threshold && r.Fresh(now, validityPeriod)
}
