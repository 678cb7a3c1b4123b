package store

import (
	"context"
	"database/sql"
	"fmt"

	id "agegate/pkg/domain"
)

// PostgresStore persists the verifier set in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verifier registry.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SetAuthorized(ctx context.Context, p id.Principal, authorized bool) error {
	query := `
		INSERT INTO verifiers (principal, authorized)
		VALUES ($1, $2)
		ON CONFLICT (principal) DO UPDATE SET authorized = EXCLUDED.authorized
	`
	if _, err := s.db.ExecContext(ctx, query, p.String(), authorized); err != nil {
		return fmt.Errorf("set verifier authorization: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAuthorized(ctx context.Context, p id.Principal) (bool, error) {
	query := `SELECT authorized FROM verifiers WHERE principal = $1`

	var authorized bool
	err := s.db.QueryRowContext(ctx, query, p.String()).Scan(&authorized)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check verifier authorization: %w", err)
	}
	return authorized, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]id.Principal, error) {
	query := `SELECT principal FROM verifiers WHERE authorized ORDER BY principal`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list verifiers: %w", err)
	}
	defer rows.Close()

	var out []id.Principal
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan verifier: %w", err)
		}
		out = append(out, id.Principal(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list verifiers: %w", err)
	}
	return out, nil
}

var _ Store = (*PostgresStore)(nil)
