package store

import (
	"context"
	"sync"

	"agegate/internal/attestation/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

type pairKey struct {
	attester id.Principal
	subject  id.Principal
}

// InMemoryStore stores attestations in memory for tests and the dev server.
type InMemoryStore struct {
	mu           sync.RWMutex
	attestations map[pairKey]*models.Attestation
}

// New constructs an empty in-memory attestation store.
func New() *InMemoryStore {
	return &InMemoryStore{attestations: make(map[pairKey]*models.Attestation)}
}

func (s *InMemoryStore) Save(_ context.Context, a *models.Attestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attestations[pairKey{a.Attester, a.Subject}] = copyAttestation(a)
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, attester, subject id.Principal) (*models.Attestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attestations[pairKey{attester, subject}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyAttestation(a), nil
}

func copyAttestation(a *models.Attestation) *models.Attestation {
	copyA := *a
	copyA.Hash = append([]byte(nil), a.Hash...)
	return &copyA
}

var _ Store = (*InMemoryStore)(nil)
