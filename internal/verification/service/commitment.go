package service

import (
	"context"
	"errors"

	"agegate/internal/audit"
	commitmentModels "agegate/internal/commitment/models"
	"agegate/internal/platform/tracer"
	"agegate/internal/verification/models"
	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/sentinel"
	"agegate/pkg/requestcontext"
	"agegate/pkg/secrets"
)

// CreateCommitment registers a new age commitment for the subject and resets
// their verification record to pending.
//
// The verification fee is collected before any state is written; a failed
// transfer aborts with no mutation. The subject's record slot is overwritten
// wholesale, discarding any prior outcome including a validated one.
func (s *Service) CreateCommitment(ctx context.Context, subject id.Principal, ageThreshold uint64, digest, salt []byte) (id.VerificationID, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCommit,
		tracer.String(tracer.AttrSubject, tracer.HashPrincipal(subject.String())),
		tracer.Int64(tracer.AttrThreshold, int64(ageThreshold)),
	)
	var err error
	defer func() { span.End(err) }()

	if subject.IsNil() {
		err = dErrors.New(dErrors.CodeNotAuthorized, "missing caller identity")
		return 0, err
	}
	if ageThreshold == 0 {
		err = dErrors.New(dErrors.CodeInvalidInput, "age threshold must be positive")
		return 0, err
	}
	if len(digest) != commitment.DigestLen {
		err = dErrors.New(dErrors.CodeInvalidInput, "commitment digest must be 32 bytes")
		return 0, err
	}
	if len(salt) != commitment.SaltLen {
		err = dErrors.New(dErrors.CodeInvalidInput, "salt must be 32 bytes")
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now(ctx)
	fee := s.fee

	if fee > 0 {
		if terr := s.ledger.Transfer(ctx, subject, s.operatorAccount, fee); terr != nil {
			if errors.Is(terr, sentinel.ErrInsufficientFunds) {
				err = dErrors.Wrap(terr, dErrors.CodeTransferFailed, "verification fee payment failed")
				return 0, err
			}
			err = dErrors.Wrap(terr, dErrors.CodeTransferFailed, "verification fee transfer failed")
			return 0, err
		}
	}

	// The subject's record slot is about to be overwritten. Losing a
	// validated record on re-commitment is preserved protocol behavior,
	// but it is surprising enough to warrant a trace in the logs.
	if prior, ferr := s.records.FindBySubject(ctx, subject); ferr == nil && prior.Status == models.StatusValidated {
		s.logger.WarnContext(ctx, "new commitment discards validated verification record",
			"subject", subject,
			"prior_verification_id", prior.VerificationID,
		)
	}

	c := &commitmentModels.Commitment{
		Subject:           subject,
		AgeThreshold:      ageThreshold,
		Digest:            digest,
		Salt:              salt,
		CreatedAt:         now,
		DeviceFingerprint: requestcontext.DeviceFingerprint(ctx),
	}
	if serr := s.commitments.Save(ctx, c); serr != nil {
		s.refundFee(ctx, subject, fee)
		err = dErrors.Wrap(serr, dErrors.CodeInternal, "failed to save commitment")
		return 0, err
	}

	nonce, nerr := secrets.GenerateNonce()
	if nerr != nil {
		s.refundFee(ctx, subject, fee)
		err = dErrors.Wrap(nerr, dErrors.CodeInternal, "failed to generate challenge nonce")
		return 0, err
	}

	record := &models.Record{
		VerificationID: c.ID,
		Subject:        subject,
		AgeThreshold:   ageThreshold,
		Digest:         digest,
		ProofTimestamp: now,
		Status:         models.StatusPending,
		ChallengeNonce: nonce,
	}
	if serr := s.records.Save(ctx, record); serr != nil {
		s.refundFee(ctx, subject, fee)
		s.logger.ErrorContext(ctx, "commitment saved but record write failed; commitment is orphaned",
			"verification_id", c.ID,
			"subject", subject,
			"error", serr,
		)
		err = dErrors.Wrap(serr, dErrors.CodeInternal, "failed to save verification record")
		return 0, err
	}

	s.incrementCommitmentsCreated()
	s.recordFeeCollected(fee)
	span.SetAttributes(tracer.Int64(tracer.AttrVerificationID, int64(c.ID)))
	s.logAudit(ctx, audit.EventCommitmentCreated,
		"subject", subject.String(),
		"verification_id", c.ID.String(),
		"age_threshold", ageThreshold,
		"decision", "allow",
	)
	return c.ID, nil
}

// refundFee best-effort returns a collected fee when a later write in the
// same operation fails. A failed refund is logged, not surfaced; the caller
// already has the primary error.
func (s *Service) refundFee(ctx context.Context, subject id.Principal, fee uint64) {
	if fee == 0 {
		return
	}
	if err := s.ledger.Transfer(ctx, s.operatorAccount, subject, fee); err != nil {
		s.logger.ErrorContext(ctx, "failed to refund verification fee after aborted commit",
			"subject", subject,
			"amount", fee,
			"error", err,
		)
	}
}
