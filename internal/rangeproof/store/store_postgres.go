package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agegate/internal/rangeproof/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// PostgresStore persists range proofs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed range proof store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, proof *models.Proof) error {
	if proof == nil {
		return fmt.Errorf("proof is required")
	}
	query := `
		INSERT INTO range_proofs (subject, min_age_verified, max_age_verified, proof_hash, verified_at_tick, expires_at_tick)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject) DO UPDATE SET
			min_age_verified = EXCLUDED.min_age_verified,
			max_age_verified = EXCLUDED.max_age_verified,
			proof_hash = EXCLUDED.proof_hash,
			verified_at_tick = EXCLUDED.verified_at_tick,
			expires_at_tick = EXCLUDED.expires_at_tick
	`
	_, err := s.db.ExecContext(ctx, query,
		proof.Subject.String(),
		int64(proof.MinAgeVerified),
		int64(proof.MaxAgeVerified),
		proof.ProofHash,
		int64(proof.VerifiedAt),
		int64(proof.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save range proof: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subject id.Principal) (*models.Proof, error) {
	query := `
		SELECT subject, min_age_verified, max_age_verified, proof_hash, verified_at_tick, expires_at_tick
		FROM range_proofs
		WHERE subject = $1
	`
	row := s.db.QueryRowContext(ctx, query, subject.String())

	var (
		proof      models.Proof
		subjectCol string
		minAge     int64
		maxAge     int64
		verifiedAt int64
		expiresAt  int64
	)
	err := row.Scan(&subjectCol, &minAge, &maxAge, &proof.ProofHash, &verifiedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find range proof: %w", err)
	}
	proof.Subject = id.Principal(subjectCol)
	proof.MinAgeVerified = uint64(minAge)
	proof.MaxAgeVerified = uint64(maxAge)
	proof.VerifiedAt = id.Tick(verifiedAt)
	proof.ExpiresAt = id.Tick(expiresAt)
	return &proof, nil
}

var _ Store = (*PostgresStore)(nil)
