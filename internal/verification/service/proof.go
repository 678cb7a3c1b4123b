package service

import (
	"context"
	"errors"
	"time"

	"agegate/internal/audit"
	"agegate/internal/platform/tracer"
	"agegate/internal/verification/models"
	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/sentinel"
	"agegate/pkg/requestcontext"
)

// SubmitProof reveals the committed age and, if the reveal predicate holds,
// promotes the subject's record to verified.
//
// The fraud bond moves into escrow before the predicate is evaluated, so a
// failed reveal forfeits the bond with no refund. That ordering is the
// protocol's fraud deterrent and is deliberately kept: only verifier
// approval or an owner withdrawal moves a posted bond back out of escrow.
func (s *Service) SubmitProof(ctx context.Context, caller id.Principal, verificationID id.VerificationID, claimedAge uint64, salt []byte) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanReveal,
		tracer.String(tracer.AttrSubject, tracer.HashPrincipal(caller.String())),
		tracer.Int64(tracer.AttrVerificationID, int64(verificationID)),
	)
	var err error
	defer func() {
		s.observeSubmitProofDuration(float64(time.Since(start).Milliseconds()))
		span.End(err)
	}()

	s.incrementProofsSubmitted()

	if caller.IsNil() {
		err = dErrors.New(dErrors.CodeNotAuthorized, "missing caller identity")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ferr := s.commitments.FindByID(ctx, verificationID)
	if ferr != nil {
		if errors.Is(ferr, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "verification not found")
			return err
		}
		err = dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load commitment")
		return err
	}
	if caller != c.Subject {
		err = dErrors.New(dErrors.CodeNotAuthorized, "caller is not the commitment subject")
		return err
	}
	if c.Revealed {
		err = dErrors.New(dErrors.CodeAlreadyVerified, "commitment already revealed")
		return err
	}

	now := s.now(ctx)
	bond := s.bond

	if bond > 0 {
		if terr := s.ledger.Transfer(ctx, caller, s.escrowAccount, bond); terr != nil {
			err = dErrors.Wrap(terr, dErrors.CodeTransferFailed, "fraud bond transfer failed")
			return err
		}
		s.recordBondPosted(bond)
		span.AddEvent(tracer.EventBondEscrowed, tracer.Int64("amount", int64(bond)))
	}

	s.checkDeviceDrift(ctx, span, c.DeviceFingerprint)

	// Bond is posted; from here on any predicate failure forfeits it.
	if !commitment.Matches(c.Digest, claimedAge, c.AgeThreshold, salt) {
		s.recordBondForfeited(bond)
		s.proofFailure(ctx, "digest mismatch",
			"principal", caller.String(),
			"subject", c.Subject.String(),
			"verification_id", verificationID.String(),
		)
		err = dErrors.New(dErrors.CodeInvalidProof, "proof verification failed")
		return err
	}
	if claimedAge < c.AgeThreshold {
		s.recordBondForfeited(bond)
		s.proofFailure(ctx, "claimed age below threshold",
			"principal", caller.String(),
			"subject", c.Subject.String(),
			"verification_id", verificationID.String(),
		)
		err = dErrors.New(dErrors.CodeInvalidProof, "proof verification failed")
		return err
	}

	c.Revealed = true
	if uerr := s.commitments.Update(ctx, c); uerr != nil {
		s.refundBond(ctx, caller, bond)
		err = dErrors.Wrap(uerr, dErrors.CodeInternal, "failed to mark commitment revealed")
		return err
	}

	record := &models.Record{
		VerificationID: c.ID,
		Subject:        c.Subject,
		AgeThreshold:   c.AgeThreshold,
		Digest:         c.Digest,
		ProofTimestamp: now,
		Status:         models.StatusVerified,
		ChallengeNonce: s.carryNonce(ctx, c.Subject),
		BondAmount:     bond,
	}
	if serr := s.records.Save(ctx, record); serr != nil {
		s.refundBond(ctx, caller, bond)
		s.logger.ErrorContext(ctx, "commitment revealed but record write failed",
			"verification_id", c.ID,
			"subject", c.Subject,
			"error", serr,
		)
		err = dErrors.Wrap(serr, dErrors.CodeInternal, "failed to save verification record")
		return err
	}

	s.incrementProofsAccepted()
	s.logAudit(ctx, audit.EventProofSubmitted,
		"principal", caller.String(),
		"subject", c.Subject.String(),
		"verification_id", c.ID.String(),
		"decision", "allow",
	)
	return nil
}

// checkDeviceDrift compares the committing device's fingerprint against the
// revealing device's. Drift never blocks a reveal; it is recorded for
// forensics only.
func (s *Service) checkDeviceDrift(ctx context.Context, span tracer.Span, committed string) {
	if s.devices == nil {
		return
	}
	current := requestcontext.DeviceFingerprint(ctx)
	_, drift := s.devices.CompareFingerprints(committed, current)
	if !drift {
		return
	}
	s.incrementDeviceDrift()
	span.SetAttributes(tracer.Bool("device_drift", true))
	s.logger.WarnContext(ctx, "proof revealed from a different device than the commitment",
		"request_id", requestcontext.RequestID(ctx),
	)
}

// carryNonce preserves the challenge nonce issued at commit time when the
// record slot is overwritten on reveal.
func (s *Service) carryNonce(ctx context.Context, subject id.Principal) string {
	prior, err := s.records.FindBySubject(ctx, subject)
	if err != nil {
		return ""
	}
	return prior.ChallengeNonce
}

// refundBond best-effort returns an escrowed bond when a later write in the
// same operation fails.
func (s *Service) refundBond(ctx context.Context, subject id.Principal, bond uint64) {
	if bond == 0 {
		return
	}
	if err := s.ledger.Transfer(ctx, s.escrowAccount, subject, bond); err != nil {
		s.logger.ErrorContext(ctx, "failed to refund bond after aborted reveal",
			"subject", subject,
			"amount", bond,
			"error", err,
		)
	}
}
