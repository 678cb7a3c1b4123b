package testutil

import (
	"bytes"

	attestationmodels "agegate/internal/attestation/models"
	commitmentmodels "agegate/internal/commitment/models"
	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
)

// TestPrincipals provides convenient pre-defined principals for tests.
// Use these for deterministic test data.
var TestPrincipals = struct {
	Owner     id.Principal
	Subject1  id.Principal
	Subject2  id.Principal
	Verifier1 id.Principal
	Verifier2 id.Principal
	Attester1 id.Principal
}{
	Owner:     id.Principal("owner"),
	Subject1:  id.Principal("alice"),
	Subject2:  id.Principal("bob"),
	Verifier1: id.Principal("victor"),
	Verifier2: id.Principal("vera"),
	Attester1: id.Principal("clinic"),
}

// TestSalt returns a 32-byte salt filled with the given byte.
func TestSalt(b byte) []byte {
	return bytes.Repeat([]byte{b}, commitment.SaltLen)
}

// TestDigest computes the commit digest for the given age claim. Use with
// TestSalt for deterministic commit/reveal pairs.
func TestDigest(claimedAge, ageThreshold uint64, salt []byte) []byte {
	d := commitment.Digest(claimedAge, ageThreshold, salt)
	return d[:]
}

// CommitmentBuilder provides a fluent interface for building test commitments.
type CommitmentBuilder struct {
	c          *commitmentmodels.Commitment
	claimedAge uint64
}

// NewCommitmentBuilder creates a CommitmentBuilder with sensible defaults:
// subject alice, claimed age 21 against threshold 18, committed at tick 100.
// The digest is derived from those fields at Build time unless overridden.
func NewCommitmentBuilder() *CommitmentBuilder {
	return &CommitmentBuilder{
		c: &commitmentmodels.Commitment{
			Subject:      TestPrincipals.Subject1,
			AgeThreshold: 18,
			Salt:         TestSalt(0xcd),
			CreatedAt:    100,
		},
		claimedAge: 21,
	}
}

func (b *CommitmentBuilder) WithID(verificationID id.VerificationID) *CommitmentBuilder {
	b.c.ID = verificationID
	return b
}

func (b *CommitmentBuilder) WithSubject(subject id.Principal) *CommitmentBuilder {
	b.c.Subject = subject
	return b
}

func (b *CommitmentBuilder) WithThreshold(ageThreshold uint64) *CommitmentBuilder {
	b.c.AgeThreshold = ageThreshold
	return b
}

func (b *CommitmentBuilder) WithClaimedAge(age uint64) *CommitmentBuilder {
	b.claimedAge = age
	return b
}

func (b *CommitmentBuilder) WithSalt(salt []byte) *CommitmentBuilder {
	b.c.Salt = salt
	return b
}

func (b *CommitmentBuilder) WithDigest(digest []byte) *CommitmentBuilder {
	b.c.Digest = digest
	return b
}

func (b *CommitmentBuilder) CreatedAt(tick id.Tick) *CommitmentBuilder {
	b.c.CreatedAt = tick
	return b
}

func (b *CommitmentBuilder) Revealed() *CommitmentBuilder {
	b.c.Revealed = true
	return b
}

func (b *CommitmentBuilder) WithDeviceFingerprint(fp string) *CommitmentBuilder {
	b.c.DeviceFingerprint = fp
	return b
}

func (b *CommitmentBuilder) Build() *commitmentmodels.Commitment {
	if b.c.Digest == nil {
		b.c.Digest = TestDigest(b.claimedAge, b.c.AgeThreshold, b.c.Salt)
	}
	return b.c
}

// AttestationBuilder provides a fluent interface for building test attestations.
type AttestationBuilder struct {
	a *attestationmodels.Attestation
}

// NewAttestationBuilder creates an AttestationBuilder with sensible defaults:
// clinic attests alice for threshold 18 at tick 100, valid until tick 700.
// The hash is derived from those fields at Build time unless overridden.
func NewAttestationBuilder() *AttestationBuilder {
	return &AttestationBuilder{
		a: &attestationmodels.Attestation{
			Attester:     TestPrincipals.Attester1,
			Subject:      TestPrincipals.Subject1,
			AgeThreshold: 18,
			CreatedAt:    100,
			ValidUntil:   700,
		},
	}
}

func (b *AttestationBuilder) WithAttester(attester id.Principal) *AttestationBuilder {
	b.a.Attester = attester
	return b
}

func (b *AttestationBuilder) WithSubject(subject id.Principal) *AttestationBuilder {
	b.a.Subject = subject
	return b
}

func (b *AttestationBuilder) WithThreshold(ageThreshold uint64) *AttestationBuilder {
	b.a.AgeThreshold = ageThreshold
	return b
}

func (b *AttestationBuilder) CreatedAt(tick id.Tick) *AttestationBuilder {
	b.a.CreatedAt = tick
	return b
}

func (b *AttestationBuilder) ValidUntil(tick id.Tick) *AttestationBuilder {
	b.a.ValidUntil = tick
	return b
}

func (b *AttestationBuilder) WithHash(hash []byte) *AttestationBuilder {
	b.a.Hash = hash
	return b
}

func (b *AttestationBuilder) Revoked() *AttestationBuilder {
	b.a.Revoked = true
	return b
}

func (b *AttestationBuilder) Build() *attestationmodels.Attestation {
	if b.a.Hash == nil {
		validDuration := uint64(0)
		if b.a.ValidUntil > b.a.CreatedAt {
			validDuration = uint64(b.a.ValidUntil - b.a.CreatedAt)
		}
		b.a.Hash = attestationmodels.ComputeHash(b.a.AgeThreshold, b.a.CreatedAt, validDuration)
	}
	return b.a
}

// Quick helper functions for simple test cases

// NewTestCommitment creates an unrevealed commitment for the given subject.
func NewTestCommitment(subject id.Principal) *commitmentmodels.Commitment {
	return NewCommitmentBuilder().
		WithSubject(subject).
		Build()
}

// NewTestAttestation creates an active attestation for the given pair.
func NewTestAttestation(attester, subject id.Principal) *attestationmodels.Attestation {
	return NewAttestationBuilder().
		WithAttester(attester).
		WithSubject(subject).
		Build()
}
