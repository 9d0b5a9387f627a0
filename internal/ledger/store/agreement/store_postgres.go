package agreement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
	txcontext "auditlink/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists agreements in PostgreSQL. Rows are never updated.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed agreement store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, a *models.Agreement) error {
	query := `
		INSERT INTO agreements (claim_id, provider, patient, encrypted_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		string(a.ClaimID),
		a.Provider.String(),
		a.Patient.String(),
		a.EncryptedHash,
		a.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert agreement: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByClaimID(ctx context.Context, claimID id.ClaimID) (*models.Agreement, error) {
	query := `
		SELECT claim_id, provider, patient, encrypted_hash, created_at
		FROM agreements
		WHERE claim_id = $1
	`
	var a models.Agreement
	err := s.execer(ctx).QueryRowContext(ctx, query, string(claimID)).Scan(
		&a.ClaimID, &a.Provider, &a.Patient, &a.EncryptedHash, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find agreement by claim id: %w", err)
	}
	return &a, nil
}
