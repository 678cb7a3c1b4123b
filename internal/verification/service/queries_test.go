package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agegate/internal/verification/models"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/requestcontext"
)

func (s *EngineSuite) TestCheckAgeThreshold() {
	vid, salt := s.commit(testSubject, 25, 18)

	s.T().Run("pending record does not vouch", func(t *testing.T) {
		ok, err := s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	s.T().Run("verified record vouches up to its threshold", func(t *testing.T) {
		s.reveal(testSubject, vid, 25, salt)
		ok, err := s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.service.CheckAgeThreshold(context.Background(), testSubject, 16)
		require.NoError(t, err)
		assert.True(t, ok, "lower thresholds are covered by a higher verified one")

		ok, err = s.service.CheckAgeThreshold(context.Background(), testSubject, 21)
		require.NoError(t, err)
		assert.False(t, ok, "higher thresholds are not covered")
	})

	s.T().Run("window boundary is exclusive", func(t *testing.T) {
		s.clk.Advance(testPeriod - 1)
		ok, err := s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
		require.NoError(t, err)
		assert.True(t, ok, "one tick before the boundary is still fresh")

		s.clk.Advance(1)
		ok, err = s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
		require.NoError(t, err)
		assert.False(t, ok, "elapsed == validity period is already stale")
	})

	s.T().Run("unknown subject reports false without error", func(t *testing.T) {
		ok, err := s.service.CheckAgeThreshold(context.Background(), "nobody", 18)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func (s *EngineSuite) TestCheckAgeThresholdStaysFalseAfterRejection() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.reveal(testSubject, vid, 25, salt)
	s.authorize(testVerifier)
	s.Require().NoError(s.service.Validate(context.Background(), testVerifier, testSubject, false))

	ok, err := s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *EngineSuite) TestStatusReportsEffectiveState() {
	vid, salt := s.commit(testSubject, 25, 18)

	s.T().Run("unknown subject returns not found", func(t *testing.T) {
		_, err := s.service.Status(context.Background(), "nobody")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("pending is reported as stored", func(t *testing.T) {
		resp, err := s.service.Status(context.Background(), testSubject)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusPending), resp.Status)
		assert.Equal(t, uint64(vid), resp.VerificationID)
		assert.Empty(t, resp.Verifier)
	})

	s.T().Run("validated goes stale at the window boundary", func(t *testing.T) {
		s.reveal(testSubject, vid, 25, salt)
		s.authorize(testVerifier)
		require.NoError(t, s.service.Validate(context.Background(), testVerifier, testSubject, true))

		resp, err := s.service.Status(context.Background(), testSubject)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusValidated), resp.Status)
		assert.Equal(t, testVerifier.String(), resp.Verifier)

		s.clk.Advance(testPeriod)
		resp, err = s.service.Status(context.Background(), testSubject)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusExpired), resp.Status, "staleness is computed at read time")

		rec, ferr := s.records.FindBySubject(context.Background(), testSubject)
		require.NoError(t, ferr)
		assert.Equal(t, models.StatusValidated, rec.Status, "the stored status never transitions to expired")
	})
}

func (s *EngineSuite) TestIsAuthorizedVerifier() {
	ok, err := s.service.IsAuthorizedVerifier(context.Background(), testVerifier)
	s.Require().NoError(err)
	s.False(ok)

	s.authorize(testVerifier)
	ok, err = s.service.IsAuthorizedVerifier(context.Background(), testVerifier)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *EngineSuite) TestContractInfo() {
	info := s.service.ContractInfo(context.Background())
	s.Equal(testFee, info.VerificationFee)
	s.Equal(testBond, info.ProofBond)
	s.Equal(testPeriod, info.ProofValidityPeriod)
	s.Equal(uint64(startTick), info.CurrentTick)

	s.clk.Advance(7)
	s.Require().NoError(s.service.SetVerificationFee(context.Background(), testOwner, 33))
	info = s.service.ContractInfo(context.Background())
	s.Equal(uint64(33), info.VerificationFee)
	s.Equal(uint64(startTick.Add(7)), info.CurrentTick)
}

func (s *EngineSuite) TestQueriesAreReadOnly() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.reveal(testSubject, vid, 25, salt)

	before, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)

	_, _ = s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
	_, _ = s.service.Status(context.Background(), testSubject)
	_, _ = s.service.RangeProof(context.Background(), testSubject)
	_, _ = s.service.IsAuthorizedVerifier(context.Background(), testVerifier)
	_ = s.service.ContractInfo(context.Background())

	after, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(before, after)
	s.Equal(testBond, s.balance(testEscrow))
}

func (s *EngineSuite) TestQueriesHonorRequestPinnedTick() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.reveal(testSubject, vid, 25, salt)

	// The wall clock has moved past the window, but a request pinned to an
	// earlier tick still sees a fresh record.
	s.clk.Advance(testPeriod + 50)
	ok, err := s.service.CheckAgeThreshold(context.Background(), testSubject, 18)
	s.Require().NoError(err)
	s.False(ok)

	pinned := requestcontext.WithTick(context.Background(), startTick.Add(1))
	ok, err = s.service.CheckAgeThreshold(pinned, testSubject, 18)
	s.Require().NoError(err)
	s.True(ok)
}
