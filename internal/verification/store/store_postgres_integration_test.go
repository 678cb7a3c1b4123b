//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"agegate/internal/verification/models"
	"agegate/internal/verification/store"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
	"agegate/pkg/testutil"
	"agegate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateModuleTables(ctx))
	// Records reference their originating commitment
	s.postgres.SeedCommitment(ctx, s.T(), 1, testutil.TestPrincipals.Subject1)
}

func (s *PostgresStoreSuite) newRecord(status models.Status) *models.Record {
	return &models.Record{
		Subject:        testutil.TestPrincipals.Subject1,
		VerificationID: 1,
		AgeThreshold:   18,
		Digest:         testutil.TestDigest(21, 18, testutil.TestSalt(0xcd)),
		ProofTimestamp: 150,
		Status:         status,
		BondAmount:     50,
	}
}

// TestSaveAndFindRoundtrip verifies all record fields survive the database,
// including the optional verifier and challenge nonce.
func (s *PostgresStoreSuite) TestSaveAndFindRoundtrip() {
	ctx := context.Background()

	verifier := testutil.TestPrincipals.Verifier1
	rec := s.newRecord(models.StatusValidated)
	rec.Verifier = &verifier
	rec.ChallengeNonce = []byte{0x01, 0x02, 0x03}
	s.Require().NoError(s.store.Save(ctx, rec))

	found, err := s.store.FindBySubject(ctx, testutil.TestPrincipals.Subject1)
	s.Require().NoError(err)
	s.Equal(rec.Subject, found.Subject)
	s.Equal(rec.VerificationID, found.VerificationID)
	s.Equal(rec.AgeThreshold, found.AgeThreshold)
	s.Equal(rec.Digest, found.Digest)
	s.Equal(rec.ProofTimestamp, found.ProofTimestamp)
	s.Equal(models.StatusValidated, found.Status)
	s.Equal(rec.ChallengeNonce, found.ChallengeNonce)
	s.Equal(rec.BondAmount, found.BondAmount)
	s.Require().NotNil(found.Verifier)
	s.Equal(verifier, *found.Verifier)
}

// TestNilVerifierRoundtrip verifies a record without a validating verifier
// stores NULL and reads back as nil.
func (s *PostgresStoreSuite) TestNilVerifierRoundtrip() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, s.newRecord(models.StatusVerified)))

	found, err := s.store.FindBySubject(ctx, testutil.TestPrincipals.Subject1)
	s.Require().NoError(err)
	s.Nil(found.Verifier)
	s.Nil(found.ChallengeNonce)
}

// TestSaveUpsertsBySubject verifies re-verification replaces the subject's
// record instead of growing the table.
func (s *PostgresStoreSuite) TestSaveUpsertsBySubject() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, s.newRecord(models.StatusVerified)))

	replacement := s.newRecord(models.StatusRevoked)
	replacement.ProofTimestamp = 400
	s.Require().NoError(s.store.Save(ctx, replacement))

	found, err := s.store.FindBySubject(ctx, testutil.TestPrincipals.Subject1)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, found.Status)
	s.Equal(id.Tick(400), found.ProofTimestamp)

	var count int
	s.Require().NoError(s.postgres.QueryRow(ctx,
		`SELECT COUNT(*) FROM verification_records WHERE subject = $1`,
		testutil.TestPrincipals.Subject1.String(),
	).Scan(&count))
	s.Equal(1, count, "upsert must keep one row per subject")
}

// TestFindBySubjectNotFound verifies unknown subjects surface the sentinel error.
func (s *PostgresStoreSuite) TestFindBySubjectNotFound() {
	_, err := s.store.FindBySubject(context.Background(), "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentUpserts verifies concurrent saves for one subject settle on a
// single consistent row.
func (s *PostgresStoreSuite) TestConcurrentUpserts() {
	ctx := context.Background()

	result := testutil.RunConcurrentCtx(ctx, 30, func(ctx context.Context, idx int) error {
		rec := s.newRecord(models.StatusVerified)
		rec.ProofTimestamp = id.Tick(200 + idx)
		return s.store.Save(ctx, rec)
	})
	s.Equal(int32(30), result.Successes, "upserts should never conflict")

	found, err := s.store.FindBySubject(ctx, testutil.TestPrincipals.Subject1)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, found.Status)
	s.GreaterOrEqual(uint64(found.ProofTimestamp), uint64(200))
}
