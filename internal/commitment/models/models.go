package models

import (
	id "agegate/pkg/domain"
)

// Commitment is the hiding, binding digest a subject publishes before
// revealing their age. Created once per commit call; mutated exactly once
// (Revealed false→true) when the proof is accepted; never deleted.
//
// The salt supplied at commit time is recorded as-is. The reveal predicate
// recomputes the digest from the salt supplied at reveal time, so a
// tampered reveal salt fails verification regardless of what was stored.
type Commitment struct {
	ID           id.VerificationID
	Subject      id.Principal
	AgeThreshold uint64
	Digest       []byte
	Salt         []byte
	CreatedAt    id.Tick
	Revealed     bool

	// DeviceFingerprint captures the committing device, if known.
	// Compared against the revealing device for audit forensics only.
	DeviceFingerprint string
}
