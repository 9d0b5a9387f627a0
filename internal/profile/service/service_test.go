package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"auditlink/internal/profile/models"
	"auditlink/internal/profile/store"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	audit "auditlink/pkg/platform/audit"
	"auditlink/pkg/requestcontext"
)

type purgerStub struct {
	calls []id.Principal
	err   error
}

func (p *purgerStub) PurgeNotifications(_ context.Context, recipient id.Principal) (int, error) {
	p.calls = append(p.calls, recipient)
	return 2, p.err
}

type publisherStub struct {
	events []audit.Event
	err    error
}

func (p *publisherStub) Emit(_ context.Context, e audit.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type ProfileServiceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *store.InMemory
	purger    *purgerStub
	publisher *publisherStub
	svc       *Service
}

func TestProfileServiceSuite(t *testing.T) {
	suite.Run(t, new(ProfileServiceSuite))
}

func (s *ProfileServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	s.purger = &purgerStub{}
	s.publisher = &publisherStub{}
	s.svc = New(s.store, s.purger, WithAuditPublisher(s.publisher))
}

func (s *ProfileServiceSuite) TestGetCallerProfileAbsent() {
	p, err := s.svc.GetCallerProfile(s.ctx, "patient-1")
	s.Require().NoError(err)
	s.Nil(p)
}

func (s *ProfileServiceSuite) TestSaveThenGet() {
	saved, err := s.svc.SaveCallerProfile(s.ctx, "patient-1", models.SaveProfileRequest{DisplayName: "Ada", Role: "patient"})
	s.Require().NoError(err)
	s.Equal(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC), saved.UpdatedAt)

	got, err := s.svc.GetCallerProfile(s.ctx, "patient-1")
	s.Require().NoError(err)
	s.Equal(saved, got)
}

func (s *ProfileServiceSuite) TestSaveValidation() {
	_, err := s.svc.SaveCallerProfile(s.ctx, "patient-1", models.SaveProfileRequest{DisplayName: "Ada", Role: "admin"})
	s.True(dErrors.Is(err, dErrors.CodeValidation))

	_, err = s.svc.SaveCallerProfile(s.ctx, "", models.SaveProfileRequest{DisplayName: "Ada", Role: "patient"})
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *ProfileServiceSuite) TestDeleteCallerAccount() {
	_, err := s.svc.SaveCallerProfile(s.ctx, "insurer-1", models.SaveProfileRequest{DisplayName: "Acme", Role: "insurer"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteCallerAccount(s.ctx, "insurer-1"))
	s.Equal([]id.Principal{"insurer-1"}, s.purger.calls)
	s.Require().Len(s.publisher.events, 1)
	s.Equal(string(audit.EventAccountDeleted), s.publisher.events[0].Action)
	s.Equal(id.Principal("insurer-1"), s.publisher.events[0].Actor)

	p, err := s.svc.GetCallerProfile(s.ctx, "insurer-1")
	s.Require().NoError(err)
	s.Nil(p)

	err = s.svc.DeleteCallerAccount(s.ctx, "insurer-1")
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *ProfileServiceSuite) TestDeleteAuditFailureKeepsAccount() {
	_, err := s.svc.SaveCallerProfile(s.ctx, "insurer-1", models.SaveProfileRequest{DisplayName: "Acme", Role: "insurer"})
	s.Require().NoError(err)
	s.publisher.err = errors.New("outbox down")

	err = s.svc.DeleteCallerAccount(s.ctx, "insurer-1")
	s.True(dErrors.Is(err, dErrors.CodeInternal))
	s.Empty(s.purger.calls)

	p, err := s.svc.GetCallerProfile(s.ctx, "insurer-1")
	s.Require().NoError(err)
	s.NotNil(p)
}

func (s *ProfileServiceSuite) TestDeletePurgeFailureIsRetryable() {
	_, err := s.svc.SaveCallerProfile(s.ctx, "patient-1", models.SaveProfileRequest{DisplayName: "Ada", Role: "patient"})
	s.Require().NoError(err)
	s.purger.err = dErrors.New(dErrors.CodeInternal, "failed to delete notifications")

	s.Error(s.svc.DeleteCallerAccount(s.ctx, "patient-1"))

	s.purger.err = nil
	s.Require().NoError(s.svc.DeleteCallerAccount(s.ctx, "patient-1"))
	s.Len(s.purger.calls, 2)
}

func (s *ProfileServiceSuite) TestListByRole() {
	for _, req := range []struct{ principal, name, role string }{
		{"p-1", "Ada", "patient"},
		{"p-2", "Ben", "patient"},
		{"i-1", "Acme", "insurer"},
	} {
		_, err := s.svc.SaveCallerProfile(s.ctx, id.Principal(req.principal), models.SaveProfileRequest{DisplayName: req.name, Role: req.role})
		s.Require().NoError(err)
	}

	patients, err := s.svc.ListByRole(s.ctx, "provider-1", models.RolePatient)
	s.Require().NoError(err)
	s.Len(patients, 2)

	_, err = s.svc.ListByRole(s.ctx, "", models.RolePatient)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}
