package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "auditlink/pkg/platform/audit"
	txcontext "auditlink/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and published to Kafka by the relay.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	payload, err := audit.EncodePayload(eventID, event)
	if err != nil {
		return err
	}

	aggregateType := "claim"
	if event.ClaimID == "" {
		aggregateType = "principal"
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID,
		aggregateType,
		audit.AggregateID(event),
		event.Action,
		payload,
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// FetchPending returns up to limit unpublished entries in insertion order.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]audit.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []audit.OutboxEntry
	for rows.Next() {
		var e audit.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps published_at on the given entries.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, entryID := range ids {
		keys[i] = entryID.String()
	}
	query := `UPDATE outbox SET published_at = $1 WHERE id = ANY($2::uuid[])`
	if _, err := s.execer(ctx).ExecContext(ctx, query, s.now(), pq.Array(keys)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
