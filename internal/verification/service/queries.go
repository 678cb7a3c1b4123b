package service

import (
	"context"
	"encoding/hex"
	"errors"

	protocol "agegate/contracts/protocol"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/sentinel"
)

// Read-only projections. Queries bypass the engine mutex: the per-subject
// record is a single overwrite slot, so a reader sees the last fully written
// record for that subject. Staleness is computed here at read time; stored
// statuses never transition to expired.

// CheckAgeThreshold reports whether the subject currently vouches for the
// given threshold: an accepted proof, covering at least the threshold, still
// inside the validity window. An unknown subject simply reports false.
func (s *Service) CheckAgeThreshold(ctx context.Context, subject id.Principal, threshold uint64) (bool, error) {
	rec, err := s.records.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementThresholdChecks("fail")
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification record")
	}
	ok := rec.Satisfies(threshold, s.now(ctx), s.validityPeriod)
	if ok {
		s.incrementThresholdChecks("pass")
	} else {
		s.incrementThresholdChecks("fail")
	}
	return ok, nil
}

// Status reports the subject's verification record with its effective
// status: verified and validated records past the validity window report as
// expired.
func (s *Service) Status(ctx context.Context, subject id.Principal) (*protocol.VerificationStatusResponse, error) {
	rec, err := s.records.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification record for subject")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification record")
	}

	resp := &protocol.VerificationStatusResponse{
		VerificationID: uint64(rec.VerificationID),
		Subject:        rec.Subject.String(),
		AgeThreshold:   rec.AgeThreshold,
		Status:         string(rec.EffectiveStatus(s.now(ctx), s.validityPeriod)),
		ProofTimestamp: uint64(rec.ProofTimestamp),
		BondAmount:     rec.BondAmount,
	}
	if rec.Verifier != nil {
		resp.Verifier = rec.Verifier.String()
	}
	return resp, nil
}

// RangeProof reports the subject's derived range proof. Once a proof has
// been derived it is never reported as absent: past expiry the payload comes
// back zeroed with Valid false.
func (s *Service) RangeProof(ctx context.Context, subject id.Principal) (*protocol.AgeRangeProofResponse, error) {
	proof, err := s.proofs.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no range proof for subject")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load range proof")
	}

	if proof.ExpiredAt(s.now(ctx)) {
		return &protocol.AgeRangeProofResponse{Valid: false}, nil
	}
	return &protocol.AgeRangeProofResponse{
		MinAgeVerified: proof.MinAgeVerified,
		MaxAgeVerified: proof.MaxAgeVerified,
		ProofHash:      hex.EncodeToString(proof.ProofHash),
		VerifiedAt:     uint64(proof.VerifiedAt),
		ExpiresAt:      uint64(proof.ExpiresAt),
		Valid:          true,
	}, nil
}

// IsAuthorizedVerifier reports whether the principal is in the verifier
// registry.
func (s *Service) IsAuthorizedVerifier(ctx context.Context, p id.Principal) (bool, error) {
	authorized, err := s.verifiers.IsAuthorized(ctx, p)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier authorization")
	}
	return authorized, nil
}

// ContractInfo reports the protocol parameters and the current tick.
func (s *Service) ContractInfo(ctx context.Context) *protocol.ContractInfoResponse {
	return &protocol.ContractInfoResponse{
		VerificationFee:     s.currentFee(),
		ProofBond:           s.currentBond(),
		ProofValidityPeriod: s.validityPeriod,
		CurrentTick:         uint64(s.now(ctx)),
	}
}
