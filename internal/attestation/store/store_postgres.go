package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agegate/internal/attestation/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// PostgresStore persists attestations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed attestation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, a *models.Attestation) error {
	if a == nil {
		return fmt.Errorf("attestation is required")
	}

	query := `
		INSERT INTO attestations
			(attester, subject, age_threshold, hash, created_at_tick, valid_until_tick, revoked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (attester, subject) DO UPDATE SET
			age_threshold = EXCLUDED.age_threshold,
			hash = EXCLUDED.hash,
			created_at_tick = EXCLUDED.created_at_tick,
			valid_until_tick = EXCLUDED.valid_until_tick,
			revoked = EXCLUDED.revoked
	`
	_, err := s.db.ExecContext(ctx, query,
		a.Attester.String(),
		a.Subject.String(),
		int64(a.AgeThreshold),
		a.Hash,
		int64(a.CreatedAt),
		int64(a.ValidUntil),
		a.Revoked,
	)
	if err != nil {
		return fmt.Errorf("save attestation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, attester, subject id.Principal) (*models.Attestation, error) {
	query := `
		SELECT attester, subject, age_threshold, hash, created_at_tick, valid_until_tick, revoked
		FROM attestations
		WHERE attester = $1 AND subject = $2
	`
	row := s.db.QueryRowContext(ctx, query, attester.String(), subject.String())

	var (
		a            models.Attestation
		attesterCol  string
		subjectCol   string
		ageThreshold int64
		createdAt    int64
		validUntil   int64
	)
	err := row.Scan(&attesterCol, &subjectCol, &ageThreshold, &a.Hash, &createdAt, &validUntil, &a.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find attestation: %w", err)
	}

	a.Attester = id.Principal(attesterCol)
	a.Subject = id.Principal(subjectCol)
	a.AgeThreshold = uint64(ageThreshold)
	a.CreatedAt = id.Tick(createdAt)
	a.ValidUntil = id.Tick(validUntil)
	return &a, nil
}

var _ Store = (*PostgresStore)(nil)
