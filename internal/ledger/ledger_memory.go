package ledger

import (
	"context"
	"sync"

	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// InMemoryLedger is a map-backed ledger for development and tests.
type InMemoryLedger struct {
	mu       sync.RWMutex
	balances map[id.Principal]uint64
}

// NewInMemoryLedger creates an empty in-memory ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		balances: make(map[id.Principal]uint64),
	}
}

// Credit adds funds to a principal's balance. Seeding helper for tests
// and the dev server; not part of the Ledger interface.
func (l *InMemoryLedger) Credit(p id.Principal, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[p] += amount
}

// Transfer moves amount between principals under a single lock.
func (l *InMemoryLedger) Transfer(_ context.Context, from, to id.Principal, amount uint64) error {
	if amount == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return sentinel.ErrInsufficientFunds
	}

	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Balance reports the current balance of a principal.
func (l *InMemoryLedger) Balance(_ context.Context, p id.Principal) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[p], nil
}

var _ Ledger = (*InMemoryLedger)(nil)
