package agreement

import (
	"context"
	"sync"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
	txcontext "auditlink/pkg/platform/tx"
)

// InMemory is an insert-only agreement store keyed by claim ID.
type InMemory struct {
	mu         sync.RWMutex
	agreements map[id.ClaimID]models.Agreement
}

func NewInMemory() *InMemory {
	return &InMemory{agreements: make(map[id.ClaimID]models.Agreement)}
}

// Create inserts a. Returns sentinel.ErrAlreadyUsed if the claim already has one.
func (s *InMemory) Create(ctx context.Context, a *models.Agreement) error {
	s.mu.Lock()
	if _, ok := s.agreements[a.ClaimID]; ok {
		s.mu.Unlock()
		return sentinel.ErrAlreadyUsed
	}
	s.agreements[a.ClaimID] = *a
	s.mu.Unlock()

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.agreements, a.ClaimID)
	})
	return nil
}

func (s *InMemory) FindByClaimID(_ context.Context, claimID id.ClaimID) (*models.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agreements[claimID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}
