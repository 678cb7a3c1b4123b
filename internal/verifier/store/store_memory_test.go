package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "agegate/pkg/domain"
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

func (s *InMemoryStoreSuite) TestAuthorizeAndRevoke() {
	s.Run("Given an unknown principal, Then not authorized", func() {
		ok, err := s.store.IsAuthorized(s.ctx, "clinic")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("When authorized, Then IsAuthorized reports true", func() {
		s.Require().NoError(s.store.SetAuthorized(s.ctx, "clinic", true))
		ok, err := s.store.IsAuthorized(s.ctx, "clinic")
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("When revoked, Then IsAuthorized reports false again", func() {
		s.Require().NoError(s.store.SetAuthorized(s.ctx, "clinic", false))
		ok, err := s.store.IsAuthorized(s.ctx, "clinic")
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *InMemoryStoreSuite) TestRevokeUnknownIsIdempotent() {
	s.NoError(s.store.SetAuthorized(s.ctx, "nobody", false))
}

func (s *InMemoryStoreSuite) TestListReturnsSortedAuthorized() {
	s.Require().NoError(s.store.SetAuthorized(s.ctx, "clinic-b", true))
	s.Require().NoError(s.store.SetAuthorized(s.ctx, "clinic-a", true))
	s.Require().NoError(s.store.SetAuthorized(s.ctx, "clinic-c", true))
	s.Require().NoError(s.store.SetAuthorized(s.ctx, "clinic-c", false))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]id.Principal{"clinic-a", "clinic-b"}, list)
}
