// Package outbox relays persisted audit events to the message broker.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "auditlink/pkg/platform/audit"
	"auditlink/pkg/platform/circuit"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
)

// Producer publishes one record to the audit topic.
type Producer interface {
	Produce(ctx context.Context, key string, value []byte) error
}

// Relay polls the outbox and publishes pending entries in order. An entry
// is marked published only after the producer acknowledged it, so delivery
// is at-least-once.
type Relay struct {
	outbox   audit.Outbox
	producer Producer
	interval time.Duration
	batch    int
	logger   *slog.Logger
	breaker  *circuit.Breaker
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithBreaker replaces the default broker circuit breaker. While the circuit
// is open each flush probes the broker with a single entry.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		if b != nil {
			r.breaker = b
		}
	}
}

func NewRelay(outbox audit.Outbox, producer Producer, opts ...Option) *Relay {
	r := &Relay{
		outbox:   outbox,
		producer: producer,
		interval: defaultInterval,
		batch:    defaultBatchSize,
		logger:   slog.New(slog.DiscardHandler),
		breaker:  circuit.New("audit-broker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run flushes the outbox every interval until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if n, err := r.Flush(ctx); err != nil {
			r.logger.ErrorContext(ctx, "audit outbox relay failed", "error", err, "published", n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Flush publishes one batch of pending entries and returns how many were
// marked published. It stops at the first producer failure so entries keep
// their order on retry.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	limit := r.batch
	if r.breaker.IsOpen() {
		limit = 1
	}
	entries, err := r.outbox.FetchPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("fetch pending outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	var produceErr error
	for _, e := range entries {
		if err := r.producer.Produce(ctx, e.AggregateID, e.Payload); err != nil {
			produceErr = fmt.Errorf("produce outbox entry %s: %w", e.ID, err)
			if _, change := r.breaker.RecordFailure(); change.Opened {
				r.logger.WarnContext(ctx, "audit broker circuit opened", "breaker", r.breaker.Name())
			}
			break
		}
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "audit broker circuit closed", "breaker", r.breaker.Name())
		}
		published = append(published, e.ID)
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published); err != nil {
			return 0, fmt.Errorf("mark outbox entries published: %w", err)
		}
	}
	return len(published), produceErr
}
