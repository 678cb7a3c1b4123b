package store

import (
	"context"

	"agegate/internal/rangeproof/models"
	id "agegate/pkg/domain"
)

// Store persists age range proofs, one per subject.
//
// Error contract:
// - FindBySubject returns sentinel.ErrNotFound when no proof was ever derived
// - Save overwrites any existing proof for the subject
type Store interface {
	Save(ctx context.Context, proof *models.Proof) error
	FindBySubject(ctx context.Context, subject id.Principal) (*models.Proof, error)
}
