package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
}

func (s *InMemoryStoreSuite) TestSaveOverwritesSubjectSlot() {
	s.Run("Given a pending record, When overwritten with verified, Then only the last write survives", func() {
		first := &models.Record{
			VerificationID: 1,
			Subject:        "alice",
			AgeThreshold:   18,
			Status:         models.StatusPending,
		}
		s.Require().NoError(s.store.Save(s.ctx, first))

		second := &models.Record{
			VerificationID: 2,
			Subject:        "alice",
			AgeThreshold:   21,
			Status:         models.StatusVerified,
			BondAmount:     5_000_000,
		}
		s.Require().NoError(s.store.Save(s.ctx, second))

		found, err := s.store.FindBySubject(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal(id.VerificationID(2), found.VerificationID)
		s.Equal(models.StatusVerified, found.Status)
		s.Equal(uint64(5_000_000), found.BondAmount)
	})
}

func (s *InMemoryStoreSuite) TestFindUnknownSubject() {
	_, err := s.store.FindBySubject(s.ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestVerifierPointerIsCopied() {
	verifier := id.Principal("clinic")
	record := &models.Record{
		VerificationID: 1,
		Subject:        "alice",
		Status:         models.StatusValidated,
		Verifier:       &verifier,
	}
	s.Require().NoError(s.store.Save(s.ctx, record))

	found, err := s.store.FindBySubject(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().NotNil(found.Verifier)

	*found.Verifier = "mallory"

	again, err := s.store.FindBySubject(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(id.Principal("clinic"), *again.Verifier, "mutating a returned record must not touch the store")
}
