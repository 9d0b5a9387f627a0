package notification

import (
	"context"
	"slices"
	"sync"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
	txcontext "auditlink/pkg/platform/tx"
)

// InMemory is an append-only notification log. Insertion order breaks ties
// between notifications created at the same instant.
type InMemory struct {
	mu    sync.RWMutex
	items []*models.Notification
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	s.items = append(s.items, n.Clone())
	s.mu.Unlock()

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items = slices.DeleteFunc(s.items, func(it *models.Notification) bool { return it.ID == n.ID })
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == notificationID {
			return it.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// MarkRead persists the read flag and timestamp of n.
func (s *InMemory) MarkRead(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(it *models.Notification) bool { return it.ID == n.ID })
	if idx < 0 {
		s.mu.Unlock()
		return sentinel.ErrNotFound
	}
	prev := s.items[idx]
	next := prev.Clone()
	next.Read = n.Read
	next.ReadAt = n.ReadAt
	s.items[idx] = next
	s.mu.Unlock()

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := slices.Index(s.items, next); i >= 0 {
			s.items[i] = prev
		}
	})
	return nil
}

// ListByRecipient returns the recipient's notifications oldest first.
func (s *InMemory) ListByRecipient(_ context.Context, recipient id.Principal) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, it := range s.items {
		if it.Recipient == recipient {
			out = append(out, it.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Notification) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// DeleteByRecipient removes every notification addressed to recipient.
func (s *InMemory) DeleteByRecipient(ctx context.Context, recipient id.Principal) (int, error) {
	s.mu.Lock()
	prev := slices.Clone(s.items)
	s.items = slices.DeleteFunc(s.items, func(it *models.Notification) bool { return it.Recipient == recipient })
	removed := len(prev) - len(s.items)
	s.mu.Unlock()

	if removed > 0 {
		txcontext.RecordUndo(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.items = prev
		})
	}
	return removed, nil
}
