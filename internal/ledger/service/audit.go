package service

import (
	"context"
	"log/slog"

	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	audit "auditlink/pkg/platform/audit"
	"auditlink/pkg/requestcontext"
)

// auditEmitter writes the audit log line and, when a publisher is
// configured, the durable audit event. Publishing is fail-closed.
type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

type auditRecord struct {
	event    audit.AuditEvent
	actor    id.Principal
	claimID  id.ClaimID
	subject  string
	decision string
}

func (e *auditEmitter) emit(ctx context.Context, r auditRecord) error {
	requestID := requestcontext.RequestID(ctx)
	e.logger.InfoContext(ctx, string(r.event),
		"actor", r.actor,
		"claim_id", r.claimID,
		"subject", r.subject,
		"decision", r.decision,
		"event", string(r.event),
		"log_type", "audit",
		"request_id", requestID,
	)
	if e.publisher == nil {
		return nil
	}
	err := e.publisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Actor:     r.actor,
		ClaimID:   r.claimID,
		Subject:   r.subject,
		Action:    string(r.event),
		Decision:  r.decision,
		RequestID: requestID,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
