package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

// PostgresStore persists verification records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verification record store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("verification record is required")
	}

	var verifier sql.NullString
	if record.Verifier != nil {
		verifier = sql.NullString{String: record.Verifier.String(), Valid: true}
	}

	query := `
		INSERT INTO verification_records
			(subject, verification_id, age_threshold, digest, proof_timestamp_tick, verifier, status, challenge_nonce, bond_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (subject) DO UPDATE SET
			verification_id = EXCLUDED.verification_id,
			age_threshold = EXCLUDED.age_threshold,
			digest = EXCLUDED.digest,
			proof_timestamp_tick = EXCLUDED.proof_timestamp_tick,
			verifier = EXCLUDED.verifier,
			status = EXCLUDED.status,
			challenge_nonce = EXCLUDED.challenge_nonce,
			bond_amount = EXCLUDED.bond_amount
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Subject.String(),
		int64(record.VerificationID),
		int64(record.AgeThreshold),
		record.Digest,
		int64(record.ProofTimestamp),
		verifier,
		string(record.Status),
		record.ChallengeNonce,
		int64(record.BondAmount),
	)
	if err != nil {
		return fmt.Errorf("save verification record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subject id.Principal) (*models.Record, error) {
	query := `
		SELECT subject, verification_id, age_threshold, digest, proof_timestamp_tick, verifier, status, challenge_nonce, bond_amount
		FROM verification_records
		WHERE subject = $1
	`
	row := s.db.QueryRowContext(ctx, query, subject.String())

	var (
		record         models.Record
		subjectCol     string
		verificationID int64
		ageThreshold   int64
		proofTimestamp int64
		verifier       sql.NullString
		status         string
		bondAmount     int64
	)
	err := row.Scan(&subjectCol, &verificationID, &ageThreshold, &record.Digest, &proofTimestamp, &verifier, &status, &record.ChallengeNonce, &bondAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification record: %w", err)
	}

	record.Subject = id.Principal(subjectCol)
	record.VerificationID = id.VerificationID(verificationID)
	record.AgeThreshold = uint64(ageThreshold)
	record.ProofTimestamp = id.Tick(proofTimestamp)
	record.Status = models.Status(status)
	record.BondAmount = uint64(bondAmount)
	if verifier.Valid {
		p := id.Principal(verifier.String)
		record.Verifier = &p
	}
	return &record, nil
}

var _ Store = (*PostgresStore)(nil)
