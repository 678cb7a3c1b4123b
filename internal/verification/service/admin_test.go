package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
)

func (s *EngineSuite) TestOwnerOperationsRejectNonOwner() {
	mallory := id.Principal("mallory")

	s.T().Run("emergency revoke", func(t *testing.T) {
		err := s.service.EmergencyRevoke(context.Background(), mallory, testSubject)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.T().Run("set verification fee", func(t *testing.T) {
		err := s.service.SetVerificationFee(context.Background(), mallory, 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.T().Run("set proof bond", func(t *testing.T) {
		err := s.service.SetProofBond(context.Background(), mallory, 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.T().Run("withdraw fees", func(t *testing.T) {
		_, err := s.service.WithdrawFees(context.Background(), mallory)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.T().Run("no state changed", func(t *testing.T) {
		info := s.service.ContractInfo(context.Background())
		assert.Equal(t, testFee, info.VerificationFee)
		assert.Equal(t, testBond, info.ProofBond)
	})
}

func (s *EngineSuite) TestSetVerificationFeeTakesEffectOnNextCommit() {
	s.Require().NoError(s.service.SetVerificationFee(context.Background(), testOwner, 25))

	salt := make([]byte, 32)
	digest := make([]byte, 32)
	s.seed(testSubject, 25)
	_, err := s.service.CreateCommitment(context.Background(), testSubject, 18, digest, salt)
	s.Require().NoError(err)
	s.Equal(uint64(25), s.balance(testOperator))
	s.Zero(s.balance(testSubject))
}

func (s *EngineSuite) TestSetProofBondTakesEffectOnNextReveal() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.Require().NoError(s.service.SetProofBond(context.Background(), testOwner, 75))

	s.seed(testSubject, 75)
	s.Require().NoError(s.service.SubmitProof(context.Background(), testSubject, vid, 25, salt))

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(uint64(75), rec.BondAmount)
	s.Equal(uint64(75), s.balance(testEscrow))
}

func (s *EngineSuite) TestEmergencyRevoke() {
	s.T().Run("unknown subject returns not found", func(t *testing.T) {
		err := s.service.EmergencyRevoke(context.Background(), testOwner, testSubject)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("forces revoked from validated", func(t *testing.T) {
		vid, salt := s.commit(testSubject, 25, 18)
		s.reveal(testSubject, vid, 25, salt)
		s.authorize(testVerifier)
		require.NoError(t, s.service.Validate(context.Background(), testVerifier, testSubject, true))

		require.NoError(t, s.service.EmergencyRevoke(context.Background(), testOwner, testSubject))

		rec, err := s.records.FindBySubject(context.Background(), testSubject)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRevoked, rec.Status)

		ok, err := s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
		require.NoError(t, err)
		assert.False(t, ok, "revoked records never vouch")
	})
}

func (s *EngineSuite) TestWithdrawFeesSweepsOperatorAndEscrow() {
	// Collect one fee and strand one bond in escrow via a rejected proof.
	vid, _ := s.commit(testSubject, 25, 18)
	s.seed(testSubject, testBond)
	badSalt := make([]byte, 32)
	s.Require().Error(s.service.SubmitProof(context.Background(), testSubject, vid, 25, badSalt))

	s.Require().Equal(testFee, s.balance(testOperator))
	s.Require().Equal(testBond, s.balance(testEscrow))

	total, err := s.service.WithdrawFees(context.Background(), testOwner)
	s.Require().NoError(err)
	s.Equal(testFee+testBond, total)
	s.Equal(testFee+testBond, s.balance(testOwner))
	s.Zero(s.balance(testOperator))
	s.Zero(s.balance(testEscrow))
}

func (s *EngineSuite) TestWithdrawFeesWithNothingToSweep() {
	total, err := s.service.WithdrawFees(context.Background(), testOwner)
	s.Require().NoError(err)
	s.Zero(total)
	s.Zero(s.balance(testOwner))
}
