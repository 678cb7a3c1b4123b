package store

import (
	"context"

	id "agegate/pkg/domain"
)

// Store tracks which principals are authorized verifiers.
// Authorization is binary and carries no expiry; revoking is setting false.
type Store interface {
	SetAuthorized(ctx context.Context, p id.Principal, authorized bool) error
	IsAuthorized(ctx context.Context, p id.Principal) (bool, error)
	List(ctx context.Context) ([]id.Principal, error)
}
