package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agegate/internal/audit"
	"agegate/internal/verification/models"
	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
)

func (s *EngineSuite) TestCreateCommitmentCollectsFeeAndOpensPendingRecord() {
	salt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	digest := commitment.Digest(25, 18, salt)
	s.seed(testSubject, 100)

	vid, err := s.service.CreateCommitment(context.Background(), testSubject, 18, digest[:], salt)
	s.Require().NoError(err)
	s.Equal(id.VerificationID(1), vid)

	s.Equal(uint64(100-testFee), s.balance(testSubject))
	s.Equal(testFee, s.balance(testOperator))

	c, err := s.commitments.FindByID(context.Background(), vid)
	s.Require().NoError(err)
	s.Equal(testSubject, c.Subject)
	s.Equal(uint64(18), c.AgeThreshold)
	s.False(c.Revealed)
	s.Equal(startTick, c.CreatedAt)

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(vid, rec.VerificationID)
	s.Equal(models.StatusPending, rec.Status)
	s.Zero(rec.BondAmount)
	s.Nil(rec.Verifier)
	s.NotEmpty(rec.ChallengeNonce)
	s.Equal(startTick, rec.ProofTimestamp)

	s.Contains(s.auditActions(testSubject), string(audit.EventCommitmentCreated))
}

func (s *EngineSuite) TestCreateCommitmentIDsAreStrictlyIncreasing() {
	bob := id.Principal("bob")
	first, _ := s.commit(testSubject, 25, 18)
	second, _ := s.commit(bob, 40, 21)
	third, _ := s.commit(testSubject, 25, 18)

	s.Equal(id.VerificationID(1), first)
	s.Equal(id.VerificationID(2), second)
	s.Equal(id.VerificationID(3), third)
}

func (s *EngineSuite) TestCreateCommitmentValidation() {
	salt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	digest := commitment.Digest(25, 18, salt)
	s.seed(testSubject, 100)

	s.T().Run("missing caller returns not authorized", func(t *testing.T) {
		_, err := s.service.CreateCommitment(context.Background(), "", 18, digest[:], salt)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.T().Run("zero threshold returns invalid input", func(t *testing.T) {
		_, err := s.service.CreateCommitment(context.Background(), testSubject, 0, digest[:], salt)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.T().Run("short digest returns invalid input", func(t *testing.T) {
		_, err := s.service.CreateCommitment(context.Background(), testSubject, 18, digest[:16], salt)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.T().Run("short salt returns invalid input", func(t *testing.T) {
		_, err := s.service.CreateCommitment(context.Background(), testSubject, 18, digest[:], salt[:8])
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.T().Run("validation failures charge no fee", func(t *testing.T) {
		assert.Equal(t, uint64(100), s.balance(testSubject))
		assert.Zero(t, s.balance(testOperator))
	})
}

func (s *EngineSuite) TestCreateCommitmentInsufficientFunds() {
	salt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	digest := commitment.Digest(25, 18, salt)
	s.seed(testSubject, testFee-1)

	_, err = s.service.CreateCommitment(context.Background(), testSubject, 18, digest[:], salt)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))

	// Aborted with no state: no commitment, no record, balances untouched.
	_, err = s.commitments.FindByID(context.Background(), 1)
	s.Error(err)
	_, err = s.records.FindBySubject(context.Background(), testSubject)
	s.Error(err)
	s.Equal(testFee-1, s.balance(testSubject))
	s.Zero(s.balance(testOperator))
}

func (s *EngineSuite) TestCreateCommitmentOverwritesValidatedRecord() {
	// Bring the subject all the way to validated.
	vid, salt := s.commit(testSubject, 25, 18)
	s.reveal(testSubject, vid, 25, salt)
	s.authorize(testVerifier)
	s.Require().NoError(s.service.Validate(context.Background(), testVerifier, testSubject, true))

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Require().Equal(models.StatusValidated, rec.Status)

	// A new commitment silently resets the slot to pending.
	newVID, _ := s.commit(testSubject, 30, 21)
	s.Equal(id.VerificationID(2), newVID)

	rec, err = s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, rec.Status)
	s.Equal(newVID, rec.VerificationID)
	s.Equal(uint64(21), rec.AgeThreshold)
	s.Zero(rec.BondAmount)
	s.Nil(rec.Verifier)
}

func (s *EngineSuite) TestCreateCommitmentWithZeroFee() {
	s.Require().NoError(s.service.SetVerificationFee(context.Background(), testOwner, 0))

	salt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	digest := commitment.Digest(25, 18, salt)

	// No funds seeded; a zero fee must not touch the ledger.
	vid, err := s.service.CreateCommitment(context.Background(), testSubject, 18, digest[:], salt)
	s.Require().NoError(err)
	s.Equal(id.VerificationID(1), vid)
	s.Zero(s.balance(testOperator))
}
