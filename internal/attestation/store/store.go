// Package store provides attestation persistence keyed by the
// (attester, subject) pair.
package store

import (
	"context"

	"agegate/internal/attestation/models"
	id "agegate/pkg/domain"
)

// Store persists attestations.
// Error Contract:
// - Find returns sentinel.ErrNotFound when no attestation exists for the pair
// - Save upserts: re-issuing for the same pair overwrites the previous entry
type Store interface {
	Save(ctx context.Context, a *models.Attestation) error
	Find(ctx context.Context, attester, subject id.Principal) (*models.Attestation, error)
}
