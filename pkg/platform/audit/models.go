package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "auditlink/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// signatures on a claim, agreement creation, account deletion.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Actor     id.Principal // principal that performed the action
	ClaimID   id.ClaimID
	Subject   string
	Action    string
	Decision  string
	RequestID string // Correlation ID from HTTP request context
}

type AuditEvent string

const (
	// Ledger events
	EventClaimSubmitted   AuditEvent = "claim_submitted"
	EventClaimEndorsed    AuditEvent = "claim_endorsed"
	EventAgreementCreated AuditEvent = "agreement_created"
	EventClaimApproved    AuditEvent = "claim_approved"
	EventPaymentConfirmed AuditEvent = "payment_confirmed"

	// Notification events
	EventNotificationRead AuditEvent = "notification_read"

	// Account events
	EventAccountDeleted AuditEvent = "account_deleted"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventClaimSubmitted:   CategoryCompliance,
	EventClaimEndorsed:    CategoryCompliance,
	EventAgreementCreated: CategoryCompliance,
	EventClaimApproved:    CategoryCompliance,
	EventPaymentConfirmed: CategoryCompliance,
	EventAccountDeleted:   CategoryCompliance,

	EventNotificationRead: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations must honor a transaction
// carried on ctx so the event commits or rolls back with the business write.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// OutboxEntry is a persisted, not yet relayed audit event.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Outbox exposes pending entries to the relay.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
