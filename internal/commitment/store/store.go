package store

import (
	"context"

	"agegate/internal/commitment/models"
	id "agegate/pkg/domain"
)

// Store persists commitments.
//
// Error contract:
// - FindByID and Update return sentinel.ErrNotFound when the id is unknown
// - Save assigns the next monotonic VerificationID when c.ID is zero
// - Infrastructure failures are returned wrapped with context
type Store interface {
	Save(ctx context.Context, c *models.Commitment) error
	FindByID(ctx context.Context, verificationID id.VerificationID) (*models.Commitment, error)
	Update(ctx context.Context, c *models.Commitment) error
}
