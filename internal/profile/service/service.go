// Package service manages the caller's directory profile and account
// deletion.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"auditlink/internal/profile/models"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	audit "auditlink/pkg/platform/audit"
	"auditlink/pkg/platform/sentinel"
	"auditlink/pkg/requestcontext"
)

var tracer = otel.Tracer("auditlink/internal/profile/service")

type Store interface {
	Save(ctx context.Context, p *models.Profile) error
	FindByPrincipal(ctx context.Context, principal id.Principal) (*models.Profile, error)
	Delete(ctx context.Context, principal id.Principal) error
	ListByRole(ctx context.Context, role models.Role) ([]*models.Profile, error)
}

// NotificationPurger removes a recipient's notifications. Implemented by the
// ledger.
type NotificationPurger interface {
	PurgeNotifications(ctx context.Context, recipient id.Principal) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store     Store
	purger    NotificationPurger
	publisher AuditPublisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func New(store Store, purger NotificationPurger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		purger: purger,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCallerProfile returns nil, nil when the caller has not set up a profile.
func (s *Service) GetCallerProfile(ctx context.Context, caller id.Principal) (p *models.Profile, err error) {
	ctx, span := s.begin(ctx, "get", caller)
	defer func() { finish(span, err) }()

	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	p, err = s.store.FindByPrincipal(ctx, caller)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

// SaveCallerProfile creates or replaces the caller's profile.
func (s *Service) SaveCallerProfile(ctx context.Context, caller id.Principal, req models.SaveProfileRequest) (p *models.Profile, err error) {
	ctx, span := s.begin(ctx, "save", caller)
	defer func() { finish(span, err) }()

	p, err = models.NewProfile(caller, req, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}
	s.logger.InfoContext(ctx, "profile saved",
		"principal", caller,
		"role", p.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

// DeleteCallerAccount records the deletion, purges the caller's
// notifications and removes the profile. Claims and agreements stay: they
// bind other parties. A retry after a partial failure completes the work.
func (s *Service) DeleteCallerAccount(ctx context.Context, caller id.Principal) (err error) {
	ctx, span := s.begin(ctx, "delete", caller)
	defer func() { finish(span, err) }()

	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.store.FindByPrincipal(ctx, caller); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	if err := s.emitDeleted(ctx, caller); err != nil {
		return err
	}

	removed, err := s.purger.PurgeNotifications(ctx, caller)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, caller); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete profile")
	}

	s.logger.InfoContext(ctx, "account deleted",
		"principal", caller,
		"notifications_removed", removed,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// ListByRole lists the directory for one role, for example the patients a
// provider can name on a claim.
func (s *Service) ListByRole(ctx context.Context, caller id.Principal, role models.Role) (list []*models.Profile, err error) {
	ctx, span := s.begin(ctx, "list", caller, attribute.String("role", role.String()))
	defer func() { finish(span, err) }()

	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	list, err = s.store.ListByRole(ctx, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list profiles")
	}
	return list, nil
}

func (s *Service) emitDeleted(ctx context.Context, caller id.Principal) error {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(audit.EventAccountDeleted),
		"actor", caller,
		"event", string(audit.EventAccountDeleted),
		"log_type", "audit",
		"request_id", requestID,
	)
	if s.publisher == nil {
		return nil
	}
	err := s.publisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Actor:     caller,
		Subject:   caller.String(),
		Action:    string(audit.EventAccountDeleted),
		Decision:  "deleted",
		RequestID: requestID,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (s *Service) begin(ctx context.Context, op string, caller id.Principal, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("principal", caller.String()))
	return tracer.Start(ctx, "profile."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
