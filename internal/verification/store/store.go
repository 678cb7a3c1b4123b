package store

import (
	"context"

	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
)

// Store persists verification records, one live record per subject.
//
// Error contract:
// - FindBySubject returns sentinel.ErrNotFound when the subject has no record
// - Save overwrites the subject's record wholesale (last writer wins)
// - Infrastructure failures are returned wrapped with context
type Store interface {
	Save(ctx context.Context, record *models.Record) error
	FindBySubject(ctx context.Context, subject id.Principal) (*models.Record, error)
}
