package claim

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
	txcontext "auditlink/pkg/platform/tx"
)

// InMemory keeps claims in a map. Records are cloned on the way in and out
// so callers never share state with the store.
type InMemory struct {
	mu     sync.RWMutex
	claims map[id.ClaimID]*models.ClaimRecord
}

func NewInMemory() *InMemory {
	return &InMemory{claims: make(map[id.ClaimID]*models.ClaimRecord)}
}

// Create inserts a new claim. Returns sentinel.ErrAlreadyUsed when the ID exists.
func (s *InMemory) Create(ctx context.Context, claim *models.ClaimRecord) error {
	s.mu.Lock()
	if _, ok := s.claims[claim.ID]; ok {
		s.mu.Unlock()
		return sentinel.ErrAlreadyUsed
	}
	s.claims[claim.ID] = claim.Clone()
	s.mu.Unlock()

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.claims, claim.ID)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, claimID id.ClaimID) (*models.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[claimID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// Update replaces a stored claim.
func (s *InMemory) Update(ctx context.Context, claim *models.ClaimRecord) error {
	s.mu.Lock()
	prev, ok := s.claims[claim.ID]
	if !ok {
		s.mu.Unlock()
		return sentinel.ErrNotFound
	}
	s.claims[claim.ID] = claim.Clone()
	s.mu.Unlock()

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.claims[prev.ID] = prev
	})
	return nil
}

// ListByParty returns every claim where p is provider, patient or insurer,
// ordered by creation time then ID.
func (s *InMemory) ListByParty(_ context.Context, p id.Principal) ([]*models.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ClaimRecord
	for _, c := range s.claims {
		if c.IsParty(p) {
			out = append(out, c.Clone())
		}
	}
	slices.SortFunc(out, compareClaims)
	return out, nil
}

func compareClaims(a, b *models.ClaimRecord) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
