package store

import (
	"context"
	"sync"

	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// InMemoryStore stores verification records in memory for tests and the dev server.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.Principal]*models.Record
}

// New constructs an empty in-memory verification record store.
func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.Principal]*models.Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copyRecord := *record
	if record.Verifier != nil {
		verifier := *record.Verifier
		copyRecord.Verifier = &verifier
	}
	s.records[record.Subject] = &copyRecord
	return nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subject id.Principal) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[subject]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyRecord := *record
	if record.Verifier != nil {
		verifier := *record.Verifier
		copyRecord.Verifier = &verifier
	}
	return &copyRecord, nil
}

var _ Store = (*InMemoryStore)(nil)
