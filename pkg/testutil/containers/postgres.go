//go:build integration

package containers

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"agegate/internal/platform/database"
	id "agegate/pkg/domain"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container with migrations applied.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("agegate_test"),
		postgres.WithUsername("agegate"),
		postgres.WithPassword("agegate_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}

	if err := pc.runMigrations(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Note: We don't register t.Cleanup here because the container is managed
	// by the singleton Manager and shared across test suites. Ryuk (testcontainers'
	// cleanup sidecar) handles container cleanup when the test process exits.

	return pc
}

// runMigrations applies the embedded protocol schema.
func (p *PostgresContainer) runMigrations(ctx context.Context) error {
	return database.ApplyMigrations(ctx, p.DB)
}

// TruncateTables clears all data from the specified tables.
// Use between tests to ensure isolation without restarting the container.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateModuleTables truncates all protocol tables for full test isolation.
// Tables are truncated with CASCADE to handle foreign key dependencies.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	// verification_records references commitments; CASCADE handles the rest
	tables := []string{
		"verification_records",
		"range_proofs",
		"attestations",
		"verifiers",
		"commitments",
	}
	return p.TruncateTables(ctx, tables...)
}

// Exec runs a SQL statement and returns the result.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// Query runs a SQL query and returns rows.
func (p *PostgresContainer) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return p.DB.QueryContext(ctx, query, args...)
}

// QueryRow runs a SQL query expected to return a single row.
func (p *PostgresContainer) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.DB.QueryRowContext(ctx, query, args...)
}

// CreateAuthorizedVerifier inserts an authorized verifier row.
// Fails the test if insertion fails.
func (p *PostgresContainer) CreateAuthorizedVerifier(ctx context.Context, t testing.TB, verifier id.Principal) {
	t.Helper()
	_, err := p.Exec(ctx, `
		INSERT INTO verifiers (principal, authorized)
		VALUES ($1, TRUE)
		ON CONFLICT (principal) DO UPDATE SET authorized = TRUE
	`, verifier.String())
	if err != nil {
		t.Fatalf("CreateAuthorizedVerifier: %v", err)
	}
}

// SeedCommitment inserts a revealed commitment row with the given ID so rows
// referencing it (verification records) satisfy their foreign key.
// Fails the test if insertion fails.
func (p *PostgresContainer) SeedCommitment(ctx context.Context, t testing.TB, verificationID id.VerificationID, subject id.Principal) {
	t.Helper()
	digest := bytes.Repeat([]byte{0xab}, 32)
	salt := bytes.Repeat([]byte{0xcd}, 32)
	_, err := p.Exec(ctx, `
		INSERT INTO commitments (id, subject, age_threshold, digest, salt, created_at_tick, revealed)
		VALUES ($1, $2, 18, $3, $4, 100, TRUE)
		ON CONFLICT (id) DO NOTHING
	`, int64(verificationID), subject.String(), digest, salt)
	if err != nil {
		t.Fatalf("SeedCommitment: %v", err)
	}
}
