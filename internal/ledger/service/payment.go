package service

import (
	"context"
	"log/slog"

	"auditlink/internal/ledger/models"
	"auditlink/pkg/requestcontext"
)

// PaymentProcessor initiates the insurer's payment for an approved claim.
// It runs inside the approval unit of work; an error aborts the approval.
type PaymentProcessor interface {
	Initiate(ctx context.Context, claim *models.ClaimRecord) error
}

// ImmediatePayment settles synchronously. Money movement happens outside
// this system, so it only records the instruction.
type ImmediatePayment struct {
	logger *slog.Logger
}

func NewImmediatePayment(logger *slog.Logger) *ImmediatePayment {
	return &ImmediatePayment{logger: logger}
}

func (p *ImmediatePayment) Initiate(ctx context.Context, claim *models.ClaimRecord) error {
	p.logger.InfoContext(ctx, "payment initiated",
		"claim_id", claim.ID,
		"insurer", claim.Insurer,
		"provider", claim.Provider,
		"amount", models.FormatAmount(claim.Amount),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// PaymentFunc adapts a function to PaymentProcessor.
type PaymentFunc func(ctx context.Context, claim *models.ClaimRecord) error

func (f PaymentFunc) Initiate(ctx context.Context, claim *models.ClaimRecord) error {
	return f(ctx, claim)
}
