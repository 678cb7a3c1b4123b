// Package models defines verifier-issued attestations: standalone,
// time-bounded claims about a subject's age threshold. Attestations are an
// independent trust path; they never read or write the subject's own
// verification record.
package models

import (
	"crypto/sha256"
	"encoding/binary"

	id "agegate/pkg/domain"
)

// Attestation is keyed by (attester, subject): an attester holds at most one
// live attestation per subject, and re-issuing overwrites the previous one.
// Revocation is a one-way flag; there is no un-revoke.
type Attestation struct {
	Attester     id.Principal `json:"attester"`
	Subject      id.Principal `json:"subject"`
	AgeThreshold uint64       `json:"age_threshold"`
	Hash         []byte       `json:"hash"`
	CreatedAt    id.Tick      `json:"created_at"`
	ValidUntil   id.Tick      `json:"valid_until"`
	Revoked      bool         `json:"revoked"`
}

// ActiveAt reports whether the attestation vouches for the given threshold
// at the given tick. The validity boundary is inclusive: an attestation is
// still active at exactly ValidUntil.
func (a *Attestation) ActiveAt(threshold uint64, now id.Tick) bool {
	return !a.Revoked && a.AgeThreshold >= threshold && now <= a.ValidUntil
}

// ComputeHash derives the attestation hash from its issuance parameters.
// Fixed 8-byte big-endian serialization of each field keeps the hash stable
// across processes.
func ComputeHash(ageThreshold uint64, createdAt id.Tick, validDuration uint64) []byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[0:8], ageThreshold)
	binary.BigEndian.PutUint64(buf[8:16], uint64(createdAt))
	binary.BigEndian.PutUint64(buf[16:24], validDuration)
	sum := sha256.Sum256(buf)
	return sum[:]
}
