package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	id "auditlink/pkg/domain"
	audit "auditlink/pkg/platform/audit"
	txcontext "auditlink/pkg/platform/tx"
)

type entry struct {
	audit.OutboxEntry
	event     audit.Event
	published bool
}

// InMemoryStore keeps audit events and their outbox entries in process.
// Appends made inside a journaled unit of work are undone on rollback.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*entry
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{now: time.Now}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	payload, err := audit.EncodePayload(eventID, event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = append(s.entries, &entry{
		OutboxEntry: audit.OutboxEntry{
			ID:          eventID,
			AggregateID: audit.AggregateID(event),
			EventType:   event.Action,
			Payload:     payload,
			CreatedAt:   s.now(),
		},
		event: event,
	})
	s.mu.Unlock()

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries = slices.DeleteFunc(s.entries, func(e *entry) bool { return e.ID == eventID })
	})
	return nil
}

// ListByActor returns events performed by actor in append order.
func (s *InMemoryStore) ListByActor(_ context.Context, actor id.Principal) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []audit.Event
	for _, e := range s.entries {
		if e.event.Actor == actor {
			events = append(events, e.event)
		}
	}
	return events, nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]audit.Event, 0, len(s.entries))
	for _, e := range s.entries {
		events = append(events, e.event)
	}
	return events, nil
}

func (s *InMemoryStore) FetchPending(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []audit.OutboxEntry
	for _, e := range s.entries {
		if len(pending) >= limit {
			break
		}
		if !e.published {
			pending = append(pending, e.OutboxEntry)
		}
	}
	return pending, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if slices.Contains(ids, e.ID) {
			e.published = true
		}
	}
	return nil
}
