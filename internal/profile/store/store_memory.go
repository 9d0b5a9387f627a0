package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"auditlink/internal/profile/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
)

// InMemory keeps profiles in a map keyed by principal.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.Principal]models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.Principal]models.Profile)}
}

// Save creates or replaces the profile.
func (s *InMemory) Save(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Principal] = *p
	return nil
}

func (s *InMemory) FindByPrincipal(_ context.Context, principal id.Principal) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[principal]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) Delete(_ context.Context, principal id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[principal]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.profiles, principal)
	return nil
}

// ListByRole returns profiles ordered by display name, then principal.
func (s *InMemory) ListByRole(_ context.Context, role models.Role) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Profile, 0)
	for _, p := range s.profiles {
		if p.Role == role {
			out = append(out, &p)
		}
	}
	sortProfiles(out)
	return out, nil
}

func sortProfiles(list []*models.Profile) {
	slices.SortFunc(list, func(a, b *models.Profile) int {
		if c := cmp.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return cmp.Compare(a.Principal, b.Principal)
	})
}
