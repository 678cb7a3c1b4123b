package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agegate/internal/audit"
	"agegate/internal/device"
	"agegate/internal/verification/models"
	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/requestcontext"
)

func (s *EngineSuite) TestSubmitProofPromotesRecordToVerified() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.clk.Advance(5)
	s.seed(testSubject, testBond)

	err := s.service.SubmitProof(context.Background(), testSubject, vid, 25, salt)
	s.Require().NoError(err)

	c, err := s.commitments.FindByID(context.Background(), vid)
	s.Require().NoError(err)
	s.True(c.Revealed)

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, rec.Status)
	s.Equal(testBond, rec.BondAmount)
	s.Equal(startTick.Add(5), rec.ProofTimestamp, "proof timestamp must be refreshed at reveal")
	s.NotEmpty(rec.ChallengeNonce, "challenge nonce from commit time is carried forward")

	s.Equal(testBond, s.balance(testEscrow))
	s.Zero(s.balance(testSubject))
	s.Contains(s.auditActions(testSubject), string(audit.EventProofSubmitted))
}

func (s *EngineSuite) TestSubmitProofPreconditions() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.seed(testSubject, testBond)

	s.T().Run("unknown verification id returns not found", func(t *testing.T) {
		err := s.service.SubmitProof(context.Background(), testSubject, vid+99, 25, salt)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("caller other than the subject is rejected", func(t *testing.T) {
		err := s.service.SubmitProof(context.Background(), "mallory", vid, 25, salt)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.T().Run("precondition failures move no funds", func(t *testing.T) {
		assert.Equal(t, testBond, s.balance(testSubject))
		assert.Zero(t, s.balance(testEscrow))
	})

	s.T().Run("second reveal returns already verified", func(t *testing.T) {
		require.NoError(t, s.service.SubmitProof(context.Background(), testSubject, vid, 25, salt))
		err := s.service.SubmitProof(context.Background(), testSubject, vid, 25, salt)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
		assert.Equal(t, testBond, s.balance(testEscrow), "failed re-reveal must not post another bond")
	})
}

func (s *EngineSuite) TestSubmitProofTamperedSaltForfeitsBond() {
	vid, _ := s.commit(testSubject, 25, 18)
	s.seed(testSubject, testBond)

	wrongSalt, err := commitment.GenerateSalt()
	s.Require().NoError(err)

	err = s.service.SubmitProof(context.Background(), testSubject, vid, 25, wrongSalt)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidProof))

	// Bond already in escrow stays there; the commitment remains revealable.
	s.Equal(testBond, s.balance(testEscrow))
	s.Zero(s.balance(testSubject))
	c, err := s.commitments.FindByID(context.Background(), vid)
	s.Require().NoError(err)
	s.False(c.Revealed)

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, rec.Status, "a rejected reveal leaves the record untouched")

	s.Contains(s.auditActions(testSubject), string(audit.EventProofRejected))
}

func (s *EngineSuite) TestSubmitProofAgeBelowThresholdForfeitsBond() {
	// The digest itself is honest for age 16, so the digest check passes and
	// the threshold comparison alone rejects the proof.
	vid, salt := s.commit(testSubject, 16, 18)
	s.seed(testSubject, testBond)

	err := s.service.SubmitProof(context.Background(), testSubject, vid, 16, salt)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidProof))
	s.Equal(testBond, s.balance(testEscrow))
	s.Zero(s.balance(testSubject))
}

func (s *EngineSuite) TestSubmitProofInsufficientBondAborts() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.seed(testSubject, testBond-1)

	err := s.service.SubmitProof(context.Background(), testSubject, vid, 25, salt)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))

	// Nothing forfeited, nothing revealed.
	s.Equal(testBond-1, s.balance(testSubject))
	s.Zero(s.balance(testEscrow))
	c, err := s.commitments.FindByID(context.Background(), vid)
	s.Require().NoError(err)
	s.False(c.Revealed)
}

func (s *EngineSuite) TestSubmitProofRetryAfterForfeit() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.seed(testSubject, testBond)

	wrongSalt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	s.Require().Error(s.service.SubmitProof(context.Background(), testSubject, vid, 25, wrongSalt))

	// A fresh bond buys another attempt at the same commitment.
	s.seed(testSubject, testBond)
	s.Require().NoError(s.service.SubmitProof(context.Background(), testSubject, vid, 25, salt))

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, rec.Status)
	s.Equal(2*testBond, s.balance(testEscrow), "the forfeited bond stays in escrow alongside the live one")
}

func (s *EngineSuite) TestSubmitProofDeviceDriftNeverBlocks() {
	svc := NewService(
		s.commitments, s.records, s.verifiers, s.proofs, s.ledger, s.clk,
		Config{
			Owner:               testOwner,
			OperatorAccount:     testOperator,
			EscrowAccount:       testEscrow,
			VerificationFee:     testFee,
			ProofBond:           testBond,
			ProofValidityPeriod: testPeriod,
		},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithDeviceService(device.NewService(true)),
	)

	commitCtx := requestcontext.WithClientMetadata(context.Background(), "10.0.0.1", "Mozilla/5.0 (X11; Linux x86_64) Firefox/120.0")
	devices := device.NewService(true)
	commitCtx = requestcontext.WithDeviceFingerprint(commitCtx, devices.ComputeFingerprint("Mozilla/5.0 (X11; Linux x86_64) Firefox/120.0"))

	salt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	digest := commitment.Digest(25, 18, salt)
	s.seed(testSubject, testFee+testBond)

	vid, err := svc.CreateCommitment(commitCtx, testSubject, 18, digest[:], salt)
	s.Require().NoError(err)

	revealCtx := requestcontext.WithDeviceFingerprint(context.Background(), devices.ComputeFingerprint("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1"))
	s.Require().NoError(svc.SubmitProof(revealCtx, testSubject, vid, 25, salt))

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, rec.Status)
}

func (s *EngineSuite) TestSubmitProofUsesRequestPinnedTick() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.seed(testSubject, testBond)

	pinned := startTick.Add(42)
	ctx := requestcontext.WithTick(context.Background(), pinned)
	s.Require().NoError(s.service.SubmitProof(ctx, testSubject, vid, 25, salt))

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(pinned, rec.ProofTimestamp)
}

func (s *EngineSuite) TestMutationsRejectMissingCaller() {
	err := s.service.SubmitProof(context.Background(), "", 1, 25, nil)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

	var zero id.Principal
	err = s.service.VerifyAgeRange(context.Background(), zero, 18, 65, nil)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
}
