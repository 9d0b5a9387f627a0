// Package compliance provides a fail-closed audit publisher for regulatory events.
//
// Publisher emits events with synchronous, fail-closed semantics.
// Events are written to the outbox and the caller blocks until the write succeeds.
// If the write fails, an error is returned and the calling operation MUST fail.
//
// Use for: claim_*, agreement_created, payment_confirmed, account_deleted
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "auditlink/pkg/platform/audit"
)

// Publisher emits compliance events with fail-closed semantics.
// All writes are synchronous - the caller blocks until persistence succeeds or fails.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithClock overrides the timestamp source for events emitted without one.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// New creates a compliance publisher.
// The store must be outbox-backed for guaranteed delivery.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes an event to the audit store.
// Returns error if persistence fails - the caller MUST fail its operation.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()

	if event.Actor.IsNil() {
		return fmt.Errorf("compliance event requires Actor")
	}
	if event.Action == "" {
		return fmt.Errorf("compliance event requires Action")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"actor", event.Actor,
				"claim_id", event.ClaimID,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted()
	}

	return nil
}

// Close is a no-op for the synchronous compliance publisher.
func (p *Publisher) Close() error {
	return nil
}
