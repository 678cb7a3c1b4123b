//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"agegate/internal/attestation/store"
	"agegate/internal/clock"
	"agegate/pkg/platform/sentinel"
	"agegate/pkg/testutil"
	"agegate/pkg/testutil/containers"
)

// One logical tick maps to 50ms of wall time so TTL eviction is observable
// within the test timeout.
const testTickInterval = 50 * time.Millisecond

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	clk   *clock.Manual
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.clk = clock.NewManual(100)
	s.store = store.NewRedis(s.redis.Client, s.clk, testTickInterval)
}

// TestSaveAndFindRoundtrip verifies the JSON encoding round-trips every field.
func (s *RedisStoreSuite) TestSaveAndFindRoundtrip() {
	ctx := context.Background()

	att := testutil.NewTestAttestation(testutil.TestPrincipals.Attester1, testutil.TestPrincipals.Subject1)
	s.Require().NoError(s.store.Save(ctx, att))

	found, err := s.store.Find(ctx, att.Attester, att.Subject)
	s.Require().NoError(err)
	s.Equal(att.Attester, found.Attester)
	s.Equal(att.Subject, found.Subject)
	s.Equal(att.AgeThreshold, found.AgeThreshold)
	s.Equal(att.Hash, found.Hash)
	s.Equal(att.CreatedAt, found.CreatedAt)
	s.Equal(att.ValidUntil, found.ValidUntil)
	s.False(found.Revoked)
}

// TestExpiredEntriesEvict verifies an attestation whose validity window has
// nearly closed disappears from Redis once its TTL lapses.
func (s *RedisStoreSuite) TestExpiredEntriesEvict() {
	ctx := context.Background()

	// Valid for 2 more ticks: TTL = (2+1) * tick interval = 150ms
	att := testutil.NewAttestationBuilder().
		CreatedAt(90).
		ValidUntil(102).
		Build()
	s.Require().NoError(s.store.Save(ctx, att))

	_, err := s.store.Find(ctx, att.Attester, att.Subject)
	s.Require().NoError(err, "entry must be readable before its TTL lapses")

	s.Require().Eventually(func() bool {
		_, err := s.store.Find(ctx, att.Attester, att.Subject)
		return errors.Is(err, sentinel.ErrNotFound)
	}, 2*time.Second, testTickInterval, "entry should evict after its validity window")
}

// TestRevocationOverwritesWithinWindow verifies a revocation write lands and
// survives lookups while the original window is still open.
func (s *RedisStoreSuite) TestRevocationOverwritesWithinWindow() {
	ctx := context.Background()

	att := testutil.NewTestAttestation(testutil.TestPrincipals.Attester1, testutil.TestPrincipals.Subject1)
	s.Require().NoError(s.store.Save(ctx, att))

	att.Revoked = true
	s.Require().NoError(s.store.Save(ctx, att))

	found, err := s.store.Find(ctx, att.Attester, att.Subject)
	s.Require().NoError(err)
	s.True(found.Revoked)
}

// TestFindNotFound verifies a missing pair surfaces the sentinel error.
func (s *RedisStoreSuite) TestFindNotFound() {
	_, err := s.store.Find(context.Background(), "ghost", testutil.TestPrincipals.Subject1)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
