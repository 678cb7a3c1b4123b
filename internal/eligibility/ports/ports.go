// Package ports defines the interfaces the eligibility engine evaluates
// against. The engine never mutates protocol state, so both ports are
// read-only views satisfied directly by the verification and attestation
// services.
package ports

import (
	"context"

	id "agegate/pkg/domain"
)

// VerificationPort is the self-sovereign path: whether the subject's own
// validated, unexpired verification vouches for the threshold.
type VerificationPort interface {
	CheckAgeThreshold(ctx context.Context, subject id.Principal, threshold uint64) (bool, error)
}

// AttestationPort is the delegated path: whether a verifier's standing
// attestation covers the threshold.
type AttestationPort interface {
	Check(ctx context.Context, attester, subject id.Principal, threshold uint64) (bool, error)
}
