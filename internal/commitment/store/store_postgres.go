package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agegate/internal/commitment/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// PostgresStore persists commitments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgres constructs a PostgreSQL-backed commitment store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a PostgreSQL-backed commitment store bound to a transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, c *models.Commitment) error {
	if c == nil {
		return fmt.Errorf("commitment is required")
	}

	if c.ID.IsNil() {
		query := `
			INSERT INTO commitments (subject, age_threshold, digest, salt, created_at_tick, revealed, device_fingerprint)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		var storedID int64
		err := s.execer().QueryRowContext(ctx, query,
			c.Subject.String(),
			int64(c.AgeThreshold),
			c.Digest,
			c.Salt,
			int64(c.CreatedAt),
			c.Revealed,
			c.DeviceFingerprint,
		).Scan(&storedID)
		if err != nil {
			return fmt.Errorf("save commitment: %w", err)
		}
		c.ID = id.VerificationID(storedID)
		return nil
	}

	query := `
		INSERT INTO commitments (id, subject, age_threshold, digest, salt, created_at_tick, revealed, device_fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.execer().ExecContext(ctx, query,
		int64(c.ID),
		c.Subject.String(),
		int64(c.AgeThreshold),
		c.Digest,
		c.Salt,
		int64(c.CreatedAt),
		c.Revealed,
		c.DeviceFingerprint,
	)
	if err != nil {
		return fmt.Errorf("save commitment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save commitment: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, verificationID id.VerificationID) (*models.Commitment, error) {
	query := `
		SELECT id, subject, age_threshold, digest, salt, created_at_tick, revealed, device_fingerprint
		FROM commitments
		WHERE id = $1
	`
	c, err := scanCommitment(s.execer().QueryRowContext(ctx, query, int64(verificationID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find commitment: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Commitment) error {
	query := `
		UPDATE commitments
		SET revealed = $2, device_fingerprint = $3
		WHERE id = $1
	`
	res, err := s.execer().ExecContext(ctx, query, int64(c.ID), c.Revealed, c.DeviceFingerprint)
	if err != nil {
		return fmt.Errorf("update commitment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update commitment: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommitment(row rowScanner) (*models.Commitment, error) {
	var (
		c            models.Commitment
		storedID     int64
		subject      string
		ageThreshold int64
		createdAt    int64
	)
	if err := row.Scan(&storedID, &subject, &ageThreshold, &c.Digest, &c.Salt, &createdAt, &c.Revealed, &c.DeviceFingerprint); err != nil {
		return nil, err
	}
	c.ID = id.VerificationID(storedID)
	c.Subject = id.Principal(subject)
	c.AgeThreshold = uint64(ageThreshold)
	c.CreatedAt = id.Tick(createdAt)
	return &c, nil
}

var _ Store = (*PostgresStore)(nil)
