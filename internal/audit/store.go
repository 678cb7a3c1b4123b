package audit

import (
	"context"
)

// Store is an append-only audit sink. ListBySubject supports the trail
// queries tests rely on; write-only sinks (Kafka) return an empty trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
