package store

import (
	"context"
	"sync"

	"agegate/internal/commitment/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// InMemoryStore stores commitments in memory for tests and the dev server.
type InMemoryStore struct {
	mu          sync.RWMutex
	commitments map[id.VerificationID]*models.Commitment
	nextID      id.VerificationID
}

// New constructs an empty in-memory commitment store.
func New() *InMemoryStore {
	return &InMemoryStore{
		commitments: make(map[id.VerificationID]*models.Commitment),
		nextID:      1,
	}
}

func (s *InMemoryStore) Save(_ context.Context, c *models.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsNil() {
		c.ID = s.nextID
		s.nextID++
	} else if _, ok := s.commitments[c.ID]; ok {
		return sentinel.ErrConflict
	}

	copyCommitment := *c
	s.commitments[c.ID] = &copyCommitment
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, verificationID id.VerificationID) (*models.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.commitments[verificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyCommitment := *c
	return &copyCommitment, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *models.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.commitments[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copyCommitment := *c
	s.commitments[c.ID] = &copyCommitment
	return nil
}

var _ Store = (*InMemoryStore)(nil)
