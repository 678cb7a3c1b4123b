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

// Owner-gated engine operations. Callers are checked against the owner
// principal the engine was booted with; everything else is rejected before
// any state is touched.

// EmergencyRevoke forces a subject's record to revoked from any state,
// bypassing the normal transitions. Escrowed funds are not touched; a bond
// stranded by a revocation leaves via WithdrawFees.
func (s *Service) EmergencyRevoke(ctx context.Context, caller, subject id.Principal) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.String(tracer.AttrSubject, tracer.HashPrincipal(subject.String())),
	)
	var err error
	defer func() { span.End(err) }()

	if caller != s.owner {
		err = dErrors.New(dErrors.CodeNotAuthorized, "caller is not the protocol owner")
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

	prior := rec.Status
	rec.Status = models.StatusRevoked
	if serr := s.records.Save(ctx, rec); serr != nil {
		err = dErrors.Wrap(serr, dErrors.CodeInternal, "failed to save verification record")
		return err
	}

	s.incrementRevocations()
	s.logAudit(ctx, audit.EventVerificationRevoked,
		"principal", caller.String(),
		"subject", subject.String(),
		"verification_id", rec.VerificationID.String(),
		"decision", "revoked",
		"reason", "emergency revocation from status "+string(prior),
	)
	return nil
}

// SetVerificationFee updates the fee collected on commitment creation.
// Takes effect for the next CreateCommitment call.
func (s *Service) SetVerificationFee(ctx context.Context, caller id.Principal, amount uint64) error {
	if caller != s.owner {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the protocol owner")
	}

	s.mu.Lock()
	previous := s.fee
	s.fee = amount
	s.mu.Unlock()

	s.logAudit(ctx, audit.EventFeeUpdated,
		"principal", caller.String(),
		"previous", previous,
		"amount", amount,
	)
	return nil
}

// SetProofBond updates the fraud bond posted on proof submission.
// Takes effect for the next SubmitProof call; bonds already in escrow keep
// the amount recorded on their verification record.
func (s *Service) SetProofBond(ctx context.Context, caller id.Principal, amount uint64) error {
	if caller != s.owner {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the protocol owner")
	}

	s.mu.Lock()
	previous := s.bond
	s.bond = amount
	s.mu.Unlock()

	s.logAudit(ctx, audit.EventBondUpdated,
		"principal", caller.String(),
		"previous", previous,
		"amount", amount,
	)
	return nil
}

// WithdrawFees sweeps the operator fee balance and the escrow balance to the
// owner account, returning the total moved. Sweeping escrow can strand bonds
// that would otherwise be refundable on approval; that is the documented
// shape of owner withdrawal, not an accident of this implementation.
func (s *Service) WithdrawFees(ctx context.Context, caller id.Principal) (uint64, error) {
	if caller != s.owner {
		return 0, dErrors.New(dErrors.CodeNotAuthorized, "caller is not the protocol owner")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	operatorBal, berr := s.ledger.Balance(ctx, s.operatorAccount)
	if berr != nil {
		return 0, dErrors.Wrap(berr, dErrors.CodeInternal, "failed to read operator balance")
	}
	escrowBal, berr := s.ledger.Balance(ctx, s.escrowAccount)
	if berr != nil {
		return 0, dErrors.Wrap(berr, dErrors.CodeInternal, "failed to read escrow balance")
	}

	if operatorBal > 0 {
		if terr := s.ledger.Transfer(ctx, s.operatorAccount, s.owner, operatorBal); terr != nil {
			return 0, dErrors.Wrap(terr, dErrors.CodeTransferFailed, "operator sweep failed")
		}
	}
	if escrowBal > 0 {
		if terr := s.ledger.Transfer(ctx, s.escrowAccount, s.owner, escrowBal); terr != nil {
			s.restoreOperatorSweep(ctx, operatorBal)
			return 0, dErrors.Wrap(terr, dErrors.CodeTransferFailed, "escrow sweep failed")
		}
	}

	total := operatorBal + escrowBal
	s.logAudit(ctx, audit.EventFeesWithdrawn,
		"principal", caller.String(),
		"amount", total,
	)
	return total, nil
}

// restoreOperatorSweep best-effort undoes the operator half of a withdrawal
// when the escrow half fails.
func (s *Service) restoreOperatorSweep(ctx context.Context, amount uint64) {
	if amount == 0 {
		return
	}
	if err := s.ledger.Transfer(ctx, s.owner, s.operatorAccount, amount); err != nil {
		s.logger.ErrorContext(ctx, "failed to restore operator balance after aborted withdrawal",
			"amount", amount,
			"error", err,
		)
	}
}
