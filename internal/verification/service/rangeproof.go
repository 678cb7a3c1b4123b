package service

import (
	"context"
	"errors"

	"agegate/internal/audit"
	"agegate/internal/platform/tracer"
	rangeproofModels "agegate/internal/rangeproof/models"
	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/sentinel"
)

// VerifyAgeRange derives a range proof from the subject's validated record.
// Derivation requires strong assurance: the record must be validated by a
// verifier and still inside the validity window, and the committed threshold
// must cover the requested minimum. Each success overwrites the subject's
// previous range proof.
//
// proofData is stored opaquely as the proof hash; it is not checked against
// the original commitment.
func (s *Service) VerifyAgeRange(ctx context.Context, subject id.Principal, minAge, maxAge uint64, proofData []byte) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRangeProof,
		tracer.String(tracer.AttrSubject, tracer.HashPrincipal(subject.String())),
		tracer.Int64("min_age", int64(minAge)),
		tracer.Int64("max_age", int64(maxAge)),
	)
	var err error
	defer func() { span.End(err) }()

	if subject.IsNil() {
		err = dErrors.New(dErrors.CodeNotAuthorized, "missing caller identity")
		return err
	}
	if minAge > maxAge {
		err = dErrors.New(dErrors.CodeInvalidInput, "minimum age exceeds maximum age")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ferr := s.records.FindBySubject(ctx, subject)
	if ferr != nil {
		if errors.Is(ferr, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "no verification record for subject")
			return err
		}
		err = dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load verification record")
		return err
	}

	now := s.now(ctx)
	switch {
	case rec.Status != models.StatusValidated:
		err = dErrors.New(dErrors.CodeInvalidProof, "verification is not validated")
		return err
	case !rec.Fresh(now, s.validityPeriod):
		err = dErrors.New(dErrors.CodeInvalidProof, "verification proof is stale")
		return err
	case rec.AgeThreshold < minAge:
		err = dErrors.New(dErrors.CodeInvalidProof, "verified threshold below requested minimum")
		return err
	}

	proof := &rangeproofModels.Proof{
		Subject:        subject,
		MinAgeVerified: minAge,
		MaxAgeVerified: maxAge,
		ProofHash:      proofData,
		VerifiedAt:     now,
		ExpiresAt:      now.Add(s.validityPeriod),
	}
	if serr := s.proofs.Save(ctx, proof); serr != nil {
		err = dErrors.Wrap(serr, dErrors.CodeInternal, "failed to save range proof")
		return err
	}

	s.incrementRangeProofsDerived()
	s.logAudit(ctx, audit.EventRangeProofDerived,
		"subject", subject.String(),
		"verification_id", rec.VerificationID.String(),
		"decision", "allow",
	)
	return nil
}
