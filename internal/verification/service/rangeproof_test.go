package service

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
)

// validatedSubject drives the subject through commit, reveal, and approval.
func (s *EngineSuite) validatedSubject(age, threshold uint64) {
	s.T().Helper()
	vid, salt := s.commit(testSubject, age, threshold)
	s.reveal(testSubject, vid, age, salt)
	s.authorize(testVerifier)
	s.Require().NoError(s.service.Validate(context.Background(), testVerifier, testSubject, true))
}

func (s *EngineSuite) TestVerifyAgeRangeDerivesProof() {
	s.validatedSubject(25, 18)
	proofData := []byte("range-evidence")

	err := s.service.VerifyAgeRange(context.Background(), testSubject, 18, 65, proofData)
	s.Require().NoError(err)

	resp, err := s.service.RangeProof(context.Background(), testSubject)
	s.Require().NoError(err)
	s.True(resp.Valid)
	s.Equal(uint64(18), resp.MinAgeVerified)
	s.Equal(uint64(65), resp.MaxAgeVerified)
	s.Equal(hex.EncodeToString(proofData), resp.ProofHash)
	s.Equal(uint64(startTick), resp.VerifiedAt)
	s.Equal(uint64(startTick.Add(testPeriod)), resp.ExpiresAt)
}

func (s *EngineSuite) TestVerifyAgeRangePreconditions() {
	s.T().Run("no record returns not found", func(t *testing.T) {
		err := s.service.VerifyAgeRange(context.Background(), testSubject, 18, 65, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("inverted range returns invalid input", func(t *testing.T) {
		err := s.service.VerifyAgeRange(context.Background(), testSubject, 65, 18, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.T().Run("verified but unvalidated record is not enough", func(t *testing.T) {
		vid, salt := s.commit(testSubject, 25, 18)
		s.reveal(testSubject, vid, 25, salt)
		err := s.service.VerifyAgeRange(context.Background(), testSubject, 18, 65, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidProof))
	})

	s.T().Run("threshold below requested minimum is rejected", func(t *testing.T) {
		s.authorize(testVerifier)
		require.NoError(t, s.service.Validate(context.Background(), testVerifier, testSubject, true))
		err := s.service.VerifyAgeRange(context.Background(), testSubject, 21, 65, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidProof))
	})

	s.T().Run("stale validation is rejected", func(t *testing.T) {
		s.clk.Advance(testPeriod)
		err := s.service.VerifyAgeRange(context.Background(), testSubject, 18, 65, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidProof))
	})
}

func (s *EngineSuite) TestVerifyAgeRangeOverwritesPriorProof() {
	s.validatedSubject(25, 21)

	s.Require().NoError(s.service.VerifyAgeRange(context.Background(), testSubject, 18, 65, []byte("first")))
	s.clk.Advance(10)
	s.Require().NoError(s.service.VerifyAgeRange(context.Background(), testSubject, 21, 99, []byte("second")))

	resp, err := s.service.RangeProof(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(uint64(21), resp.MinAgeVerified)
	s.Equal(uint64(99), resp.MaxAgeVerified)
	s.Equal(hex.EncodeToString([]byte("second")), resp.ProofHash)
	s.Equal(uint64(startTick.Add(10).Add(testPeriod)), resp.ExpiresAt, "expiry restarts from the latest derivation")
}

func (s *EngineSuite) TestRangeProofExpiresToZeroedPayload() {
	s.validatedSubject(25, 18)
	s.Require().NoError(s.service.VerifyAgeRange(context.Background(), testSubject, 18, 65, []byte("evidence")))

	// Inside the window: fully populated.
	s.clk.Advance(testPeriod)
	resp, err := s.service.RangeProof(context.Background(), testSubject)
	s.Require().NoError(err)
	s.True(resp.Valid, "expiry tick itself is still inside now <= expiresAt")

	// One past the expiry tick: zeroed payload, never absence.
	s.clk.Advance(1)
	resp, err = s.service.RangeProof(context.Background(), testSubject)
	s.Require().NoError(err)
	s.False(resp.Valid)
	s.Zero(resp.MinAgeVerified)
	s.Zero(resp.MaxAgeVerified)
	s.Empty(resp.ProofHash)
}

func (s *EngineSuite) TestRangeProofNeverDerivedReturnsNotFound() {
	_, err := s.service.RangeProof(context.Background(), id.Principal("nobody"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
