package store

import (
	"context"
	"sync"

	"agegate/internal/rangeproof/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// InMemoryStore stores range proofs in memory for tests and the dev server.
type InMemoryStore struct {
	mu     sync.RWMutex
	proofs map[id.Principal]*models.Proof
}

// New constructs an empty in-memory range proof store.
func New() *InMemoryStore {
	return &InMemoryStore{proofs: make(map[id.Principal]*models.Proof)}
}

func (s *InMemoryStore) Save(_ context.Context, proof *models.Proof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copyProof := *proof
	s.proofs[proof.Subject] = &copyProof
	return nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subject id.Principal) (*models.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proof, ok := s.proofs[subject]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyProof := *proof
	return &copyProof, nil
}

var _ Store = (*InMemoryStore)(nil)
