package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	ledgermetrics "auditlink/internal/ledger/metrics"
	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	audit "auditlink/pkg/platform/audit"
)

var tracer = otel.Tracer("auditlink/internal/ledger/service")

// ClaimStore persists claims. FindByID locks the row when a transaction is
// carried on ctx.
type ClaimStore interface {
	Create(ctx context.Context, claim *models.ClaimRecord) error
	FindByID(ctx context.Context, claimID id.ClaimID) (*models.ClaimRecord, error)
	Update(ctx context.Context, claim *models.ClaimRecord) error
	ListByParty(ctx context.Context, p id.Principal) ([]*models.ClaimRecord, error)
}

// AgreementStore is insert-only.
type AgreementStore interface {
	Create(ctx context.Context, agreement *models.Agreement) error
	FindByClaimID(ctx context.Context, claimID id.ClaimID) (*models.Agreement, error)
}

type NotificationStore interface {
	Append(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	MarkRead(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipient id.Principal) ([]*models.Notification, error)
	DeleteByRecipient(ctx context.Context, recipient id.Principal) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Ledger owns the claim lifecycle and the agreements and notifications its
// transitions produce. Every mutation runs as one unit of work.
type Ledger struct {
	claims        ClaimStore
	agreements    AgreementStore
	notifications NotificationStore
	tx            StoreTx
	payments      PaymentProcessor
	auditEmitter  *auditEmitter
	logger        *slog.Logger
	metrics       *ledgermetrics.Metrics
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *ledgermetrics.Metrics
	tx             StoreTx
	payments       PaymentProcessor
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithStoreTx sets the transaction boundary. Defaults to a process-wide
// in-memory lock with an undo journal.
func WithStoreTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

// WithPaymentProcessor sets the processor invoked on approval. Defaults to
// ImmediatePayment.
func WithPaymentProcessor(p PaymentProcessor) Option {
	return func(c *serviceConfig) {
		c.payments = p
	}
}

// New constructs a Ledger.
func New(claims ClaimStore, agreements AgreementStore, notifications NotificationStore, opts ...Option) *Ledger {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tx := cfg.tx
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	payments := cfg.payments
	if payments == nil {
		payments = NewImmediatePayment(logger)
	}
	return &Ledger{
		claims:        claims,
		agreements:    agreements,
		notifications: notifications,
		tx:            tx,
		payments:      payments,
		auditEmitter:  newAuditEmitter(logger, cfg.auditPublisher),
		logger:        logger,
		metrics:       cfg.metrics,
	}
}
