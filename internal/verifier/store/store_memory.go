package store

import (
	"context"
	"slices"
	"sync"

	id "agegate/pkg/domain"
)

// InMemoryStore keeps the verifier set in memory for tests and the dev server.
type InMemoryStore struct {
	mu         sync.RWMutex
	authorized map[id.Principal]struct{}
}

// New constructs an empty in-memory verifier registry.
func New() *InMemoryStore {
	return &InMemoryStore{authorized: make(map[id.Principal]struct{})}
}

func (s *InMemoryStore) SetAuthorized(_ context.Context, p id.Principal, authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if authorized {
		s.authorized[p] = struct{}{}
	} else {
		delete(s.authorized, p)
	}
	return nil
}

func (s *InMemoryStore) IsAuthorized(_ context.Context, p id.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.authorized[p]
	return ok, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]id.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]id.Principal, 0, len(s.authorized))
	for p := range s.authorized {
		out = append(out, p)
	}
	slices.Sort(out)
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
