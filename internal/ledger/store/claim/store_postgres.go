package claim

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

const claimColumns = `
	id, provider, patient, insurer, encrypted_hash, amount, procedure_code, status,
	provider_signed, patient_signed, insurer_signed, payment_confirmed,
	created_at, updated_at`

// PostgresStore persists claims in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed claim store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, claim *models.ClaimRecord) error {
	sig := claim.Signatures()
	query := `
		INSERT INTO claims (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		string(claim.ID),
		claim.Provider.String(),
		claim.Patient.String(),
		claim.Insurer.String(),
		claim.EncryptedHash,
		claim.Amount,
		claim.ProcedureCode,
		string(claim.Status()),
		sig.ProviderSigned,
		sig.PatientSigned,
		sig.InsurerSigned,
		sig.PaymentConfirmed,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// FindByID loads a claim. Inside a transaction the row is locked FOR UPDATE.
func (s *PostgresStore) FindByID(ctx context.Context, claimID id.ClaimID) (*models.ClaimRecord, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	if _, ok := txcontext.From(ctx); ok {
		query += ` FOR UPDATE`
	}
	claim, err := scanClaim(s.execer(ctx).QueryRowContext(ctx, query, string(claimID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find claim by id: %w", err)
	}
	return claim, nil
}

func (s *PostgresStore) Update(ctx context.Context, claim *models.ClaimRecord) error {
	sig := claim.Signatures()
	query := `
		UPDATE claims
		SET status = $2, provider_signed = $3, patient_signed = $4,
			insurer_signed = $5, payment_confirmed = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(claim.ID),
		string(claim.Status()),
		sig.ProviderSigned,
		sig.PatientSigned,
		sig.InsurerSigned,
		sig.PaymentConfirmed,
		claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByParty(ctx context.Context, p id.Principal) ([]*models.ClaimRecord, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE provider = $1 OR patient = $1 OR insurer = $1
		ORDER BY created_at, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, p.String())
	if err != nil {
		return nil, fmt.Errorf("list claims by party: %w", err)
	}
	defer rows.Close()

	var claims []*models.ClaimRecord
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return claims, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.ClaimRecord, error) {
	var (
		rec    models.ClaimRecord
		status string
		sig    models.Signatures
	)
	err := row.Scan(
		&rec.ID, &rec.Provider, &rec.Patient, &rec.Insurer,
		&rec.EncryptedHash, &rec.Amount, &rec.ProcedureCode, &status,
		&sig.ProviderSigned, &sig.PatientSigned, &sig.InsurerSigned, &sig.PaymentConfirmed,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return models.RestoreClaim(rec, models.ClaimStatus(status), sig)
}
