package service

import (
	"context"
	"errors"

	"agegate/internal/audit"
	"agegate/internal/platform/tracer"
	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/sentinel"
)

// Validate records an authorized verifier's decision on a verified record.
// Approval refunds the full bond from escrow to the subject and promotes the
// record to validated; rejection leaves the bond in escrow and demotes the
// record to rejected. This is the only path out of the verified state.
func (s *Service) Validate(ctx context.Context, verifier, subject id.Principal, approve bool) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanValidate,
		tracer.String(tracer.AttrVerifier, tracer.HashPrincipal(verifier.String())),
		tracer.String(tracer.AttrSubject, tracer.HashPrincipal(subject.String())),
		tracer.Bool("approve", approve),
	)
	var err error
	defer func() { span.End(err) }()

	if verifier.IsNil() {
		err = dErrors.New(dErrors.CodeVerifierNotAuthorized, "missing verifier identity")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	authorized, aerr := s.verifiers.IsAuthorized(ctx, verifier)
	if aerr != nil {
		err = dErrors.Wrap(aerr, dErrors.CodeInternal, "failed to check verifier authorization")
		return err
	}
	if !authorized {
		err = dErrors.New(dErrors.CodeVerifierNotAuthorized, "caller is not an authorized verifier")
		return err
	}

	rec, ferr := s.records.FindBySubject(ctx, subject)
	if ferr != nil {
		if errors.Is(ferr, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "no verification record for subject")
			return err
		}
		err = dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load verification record")
		return err
	}
	if rec.Status != models.StatusVerified {
		err = dErrors.New(dErrors.CodeInvalidProof, "verification is not awaiting validation")
		return err
	}

	if approve {
		if rec.BondAmount > 0 {
			if terr := s.ledger.Transfer(ctx, s.escrowAccount, subject, rec.BondAmount); terr != nil {
				err = dErrors.Wrap(terr, dErrors.CodeTransferFailed, "bond refund failed")
				return err
			}
			s.recordBondRefunded(rec.BondAmount)
			span.AddEvent(tracer.EventBondRefunded, tracer.Int64("amount", int64(rec.BondAmount)))
		}
		rec.Status = models.StatusValidated
	} else {
		// Rejection forfeits the bond; it stays in escrow until the owner
		// sweeps it.
		s.recordBondForfeited(rec.BondAmount)
		rec.Status = models.StatusRejected
	}
	rec.Verifier = &verifier

	if serr := s.records.Save(ctx, rec); serr != nil {
		if approve && rec.BondAmount > 0 {
			s.reescrowBond(ctx, subject, rec.BondAmount)
		}
		err = dErrors.Wrap(serr, dErrors.CodeInternal, "failed to save verification record")
		return err
	}

	if approve {
		s.incrementValidations("approved")
		s.logAudit(ctx, audit.EventVerificationValidated,
			"principal", verifier.String(),
			"subject", subject.String(),
			"verification_id", rec.VerificationID.String(),
			"decision", "approved",
		)
	} else {
		s.incrementValidations("rejected")
		s.logAudit(ctx, audit.EventVerificationRejected,
			"principal", verifier.String(),
			"subject", subject.String(),
			"verification_id", rec.VerificationID.String(),
			"decision", "rejected",
		)
	}
	return nil
}

// reescrowBond best-effort re-escrows a refunded bond when the record write
// after an approval fails.
func (s *Service) reescrowBond(ctx context.Context, subject id.Principal, bond uint64) {
	if err := s.ledger.Transfer(ctx, subject, s.escrowAccount, bond); err != nil {
		s.logger.ErrorContext(ctx, "failed to re-escrow bond after aborted validation",
			"subject", subject,
			"amount", bond,
			"error", err,
		)
	}
}
