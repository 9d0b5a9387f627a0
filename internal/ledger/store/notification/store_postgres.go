package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
	txcontext "auditlink/pkg/platform/tx"
)

const appendSavepoint = "notification_append"

const notificationColumns = `id, recipient, claim_id, kind, message, created_at, read, read_at`

// PostgresStore persists notifications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed notification store.
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

// Append inserts n. Inside a transaction the insert runs under a savepoint
// so a failed append leaves the surrounding transaction usable.
func (s *PostgresStore) Append(ctx context.Context, n *models.Notification) error {
	tx, ok := txcontext.From(ctx)
	if !ok {
		return s.insert(ctx, s.db, n)
	}
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+appendSavepoint); err != nil {
		return fmt.Errorf("notification savepoint: %w", err)
	}
	if err := s.insert(ctx, tx, n); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+appendSavepoint); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback notification savepoint: %w", rbErr))
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+appendSavepoint); err != nil {
		return fmt.Errorf("release notification savepoint: %w", err)
	}
	return nil
}

func (s *PostgresStore) insert(ctx context.Context, exec dbExecutor, n *models.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var readAt sql.NullTime
	if n.ReadAt != nil {
		readAt = sql.NullTime{Time: *n.ReadAt, Valid: true}
	}
	_, err := exec.ExecContext(ctx, query,
		uuid.UUID(n.ID),
		n.Recipient.String(),
		string(n.ClaimID),
		string(n.Kind),
		n.Message,
		n.CreatedAt,
		n.Read,
		readAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// FindByID loads a notification. Inside a transaction the row is locked FOR UPDATE.
func (s *PostgresStore) FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	if _, ok := txcontext.From(ctx); ok {
		query += ` FOR UPDATE`
	}
	n, err := scanNotification(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(notificationID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find notification by id: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, n *models.Notification) error {
	var readAt sql.NullTime
	if n.ReadAt != nil {
		readAt = sql.NullTime{Time: *n.ReadAt, Valid: true}
	}
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE notifications SET read = $2, read_at = $3 WHERE id = $1`,
		uuid.UUID(n.ID), n.Read, readAt,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ListByRecipient returns the recipient's notifications oldest first; the
// insertion sequence breaks ties.
func (s *PostgresStore) ListByRecipient(ctx context.Context, recipient id.Principal) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at, seq
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, recipient.String())
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteByRecipient(ctx context.Context, recipient id.Principal) (int, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM notifications WHERE recipient = $1`, recipient.String())
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete notifications rows affected: %w", err)
	}
	return int(rows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n      models.Notification
		rawID  uuid.UUID
		kind   string
		readAt sql.NullTime
	)
	if err := row.Scan(&rawID, &n.Recipient, &n.ClaimID, &kind, &n.Message, &n.CreatedAt, &n.Read, &readAt); err != nil {
		return nil, err
	}
	n.ID = id.NotificationID(rawID)
	n.Kind = models.NotificationKind(kind)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}
