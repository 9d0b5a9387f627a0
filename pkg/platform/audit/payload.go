package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "auditlink/pkg/domain"
)

// Payload is the JSON structure written to the outbox and published to Kafka.
type Payload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
	ClaimID   string `json:"claim_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Action    string `json:"action"`
	Decision  string `json:"decision,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// EncodePayload serializes event under eventID. The category is always
// derived from the action.
func EncodePayload(eventID uuid.UUID, event Event) ([]byte, error) {
	payload := Payload{
		ID:        eventID.String(),
		Category:  string(AuditEvent(event.Action).Category()),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Actor:     event.Actor.String(),
		ClaimID:   string(event.ClaimID),
		Subject:   event.Subject,
		Action:    event.Action,
		Decision:  event.Decision,
		RequestID: event.RequestID,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return b, nil
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(b []byte) (uuid.UUID, Event, error) {
	var payload Payload
	if err := json.Unmarshal(b, &payload); err != nil {
		return uuid.Nil, Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}
	eventID, err := uuid.Parse(payload.ID)
	if err != nil {
		return uuid.Nil, Event{}, fmt.Errorf("parse audit event id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, payload.Timestamp)
	if err != nil {
		return uuid.Nil, Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	return eventID, Event{
		Category:  EventCategory(payload.Category),
		Timestamp: ts,
		Actor:     id.Principal(payload.Actor),
		ClaimID:   id.ClaimID(payload.ClaimID),
		Subject:   payload.Subject,
		Action:    payload.Action,
		Decision:  payload.Decision,
		RequestID: payload.RequestID,
	}, nil
}

// AggregateID is the outbox aggregate (and Kafka key) for an event: the
// claim when there is one, otherwise the actor.
func AggregateID(event Event) string {
	if event.ClaimID != "" {
		return string(event.ClaimID)
	}
	return event.Actor.String()
}
