package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	audit "auditlink/pkg/platform/audit"
	"auditlink/pkg/platform/sentinel"
	"auditlink/pkg/requestcontext"
)

const (
	opSubmit           = "submit_claim"
	opEndorse          = "endorse_claim"
	opApprove          = "approve_claim"
	opConfirmPayment   = "confirm_payment"
	opListClaims       = "list_claims"
	opGetClaim         = "get_claim"
	opGetAgreement     = "get_agreement"
	opListNotification = "list_notifications"
	opMarkRead         = "mark_notification_read"
	opPurge            = "purge_notifications"
)

// SubmitClaim records a new claim signed by caller as provider.
func (l *Ledger) SubmitClaim(ctx context.Context, caller id.Principal, req models.SubmitClaimRequest) (err error) {
	ctx, span, start := l.begin(ctx, opSubmit, attribute.String("claim.id", req.ClaimID))
	defer func() { l.finish(span, opSubmit, start, err) }()

	if err := requireCaller(caller); err != nil {
		return err
	}
	claim, err := models.NewClaim(caller, req, requestcontext.Now(ctx))
	if err != nil {
		return err
	}

	return l.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := l.claims.Create(txCtx, claim); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "claim already submitted")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create claim")
		}
		return l.auditEmitter.emit(txCtx, auditRecord{
			event:   audit.EventClaimSubmitted,
			actor:   caller,
			claimID: claim.ID,
			subject: claim.Patient.String(),
		})
	})
}

// EndorseClaim records the patient's signature, creates the agreement and
// notifies the insurer.
func (l *Ledger) EndorseClaim(ctx context.Context, caller id.Principal, claimID id.ClaimID) (err error) {
	ctx, span, start := l.begin(ctx, opEndorse, attribute.String("claim.id", string(claimID)))
	defer func() { l.finish(span, opEndorse, start, err) }()

	if err := requireCaller(caller); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	return l.tx.RunInTx(ctx, func(txCtx context.Context) error {
		claim, err := l.claims.FindByID(txCtx, claimID)
		if err != nil {
			return wrapClaimErr(err)
		}
		if err := claim.Endorse(caller, now); err != nil {
			return err
		}
		agreement, err := models.NewAgreement(claim, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build agreement")
		}
		if err := l.agreements.Create(txCtx, agreement); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeInvalidState, "claim already has an agreement")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create agreement")
		}
		if err := l.claims.Update(txCtx, claim); err != nil {
			return wrapStoreErr(err, "claim not found", "failed to update claim")
		}
		if err := l.auditEmitter.emit(txCtx, auditRecord{
			event:   audit.EventClaimEndorsed,
			actor:   caller,
			claimID: claim.ID,
			subject: claim.Insurer.String(),
		}); err != nil {
			return err
		}
		if err := l.auditEmitter.emit(txCtx, auditRecord{
			event:   audit.EventAgreementCreated,
			actor:   caller,
			claimID: claim.ID,
			subject: claim.Provider.String(),
		}); err != nil {
			return err
		}
		l.notify(txCtx, models.EndorsedNotice(claim, now))
		return nil
	})
}

// ApproveClaim initiates payment and records the insurer's signature. A
// payment failure aborts the unit and leaves the claim under review.
func (l *Ledger) ApproveClaim(ctx context.Context, caller id.Principal, claimID id.ClaimID) (err error) {
	ctx, span, start := l.begin(ctx, opApprove, attribute.String("claim.id", string(claimID)))
	defer func() { l.finish(span, opApprove, start, err) }()

	if err := requireCaller(caller); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	return l.tx.RunInTx(ctx, func(txCtx context.Context) error {
		claim, err := l.claims.FindByID(txCtx, claimID)
		if err != nil {
			return wrapClaimErr(err)
		}
		if err := claim.CanApprove(caller); err != nil {
			return err
		}
		if err := l.payments.Initiate(txCtx, claim); err != nil {
			if l.metrics != nil {
				l.metrics.IncPaymentFailure()
			}
			l.logger.ErrorContext(txCtx, "payment initiation failed",
				"claim_id", claim.ID,
				"error", err,
				"request_id", requestcontext.RequestID(txCtx),
			)
			return dErrors.Wrap(err, dErrors.CodePaymentFailed, "payment initiation failed")
		}
		if err := claim.Approve(caller, now); err != nil {
			return err
		}
		if err := l.claims.Update(txCtx, claim); err != nil {
			return wrapStoreErr(err, "claim not found", "failed to update claim")
		}
		if err := l.auditEmitter.emit(txCtx, auditRecord{
			event:    audit.EventClaimApproved,
			actor:    caller,
			claimID:  claim.ID,
			subject:  claim.Provider.String(),
			decision: models.FormatAmount(claim.Amount),
		}); err != nil {
			return err
		}
		l.notify(txCtx, models.ApprovedNotice(claim, now))
		return nil
	})
}

// ConfirmPayment records the provider's receipt of payment and completes
// the claim.
func (l *Ledger) ConfirmPayment(ctx context.Context, caller id.Principal, claimID id.ClaimID) (err error) {
	ctx, span, start := l.begin(ctx, opConfirmPayment, attribute.String("claim.id", string(claimID)))
	defer func() { l.finish(span, opConfirmPayment, start, err) }()

	if err := requireCaller(caller); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	return l.tx.RunInTx(ctx, func(txCtx context.Context) error {
		claim, err := l.claims.FindByID(txCtx, claimID)
		if err != nil {
			return wrapClaimErr(err)
		}
		if err := claim.ConfirmPayment(caller, now); err != nil {
			return err
		}
		if err := l.claims.Update(txCtx, claim); err != nil {
			return wrapStoreErr(err, "claim not found", "failed to update claim")
		}
		return l.auditEmitter.emit(txCtx, auditRecord{
			event:   audit.EventPaymentConfirmed,
			actor:   caller,
			claimID: claim.ID,
			subject: claim.Insurer.String(),
		})
	})
}

// ListClaimsByRole returns every claim where caller is provider, patient or
// insurer.
func (l *Ledger) ListClaimsByRole(ctx context.Context, caller id.Principal) (claims []*models.ClaimRecord, err error) {
	ctx, span, start := l.begin(ctx, opListClaims)
	defer func() { l.finish(span, opListClaims, start, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	err = l.tx.View(ctx, func(ctx context.Context) error {
		found, err := l.claims.ListByParty(ctx, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
		}
		claims = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []*models.ClaimRecord{}
	}
	return claims, nil
}

// GetClaim returns one claim to one of its parties.
func (l *Ledger) GetClaim(ctx context.Context, caller id.Principal, claimID id.ClaimID) (claim *models.ClaimRecord, err error) {
	ctx, span, start := l.begin(ctx, opGetClaim, attribute.String("claim.id", string(claimID)))
	defer func() { l.finish(span, opGetClaim, start, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	err = l.tx.View(ctx, func(ctx context.Context) error {
		found, err := l.loadForParty(ctx, caller, claimID)
		if err != nil {
			return err
		}
		claim = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// GetAgreementByClaimID returns the agreement for a claim, or nil before the
// patient has endorsed it. Only parties of the claim may read it.
func (l *Ledger) GetAgreementByClaimID(ctx context.Context, caller id.Principal, claimID id.ClaimID) (agreement *models.Agreement, err error) {
	ctx, span, start := l.begin(ctx, opGetAgreement, attribute.String("claim.id", string(claimID)))
	defer func() { l.finish(span, opGetAgreement, start, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	err = l.tx.View(ctx, func(ctx context.Context) error {
		if _, err := l.loadForParty(ctx, caller, claimID); err != nil {
			return err
		}
		found, err := l.agreements.FindByClaimID(ctx, claimID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agreement")
		}
		agreement = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agreement, nil
}

// ListNotifications returns the caller's notifications in the given order.
func (l *Ledger) ListNotifications(ctx context.Context, caller id.Principal, order models.SortOrder) (list []*models.Notification, err error) {
	ctx, span, start := l.begin(ctx, opListNotification)
	defer func() { l.finish(span, opListNotification, start, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	err = l.tx.View(ctx, func(ctx context.Context) error {
		found, err := l.notifications.ListByRecipient(ctx, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
		}
		list = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Notification{}
	}
	if order == models.NewestFirst {
		slices.Reverse(list)
	}
	return list, nil
}

// MarkNotificationRead flags a notification as read by its recipient.
// Marking an already-read notification succeeds without rewriting it.
func (l *Ledger) MarkNotificationRead(ctx context.Context, caller id.Principal, notificationID id.NotificationID) (err error) {
	ctx, span, start := l.begin(ctx, opMarkRead, attribute.String("notification.id", notificationID.String()))
	defer func() { l.finish(span, opMarkRead, start, err) }()

	if err := requireCaller(caller); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	return l.tx.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := l.notifications.FindByID(txCtx, notificationID)
		if err != nil {
			return wrapNotificationErr(err)
		}
		changed, err := n.MarkRead(caller, now)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := l.notifications.MarkRead(txCtx, n); err != nil {
			return wrapStoreErr(err, "notification not found", "failed to mark notification read")
		}
		return l.auditEmitter.emit(txCtx, auditRecord{
			event:   audit.EventNotificationRead,
			actor:   caller,
			claimID: n.ClaimID,
			subject: n.ID.String(),
		})
	})
}

// PurgeNotifications deletes every notification addressed to recipient.
// Used when an account is deleted.
func (l *Ledger) PurgeNotifications(ctx context.Context, recipient id.Principal) (removed int, err error) {
	ctx, span, start := l.begin(ctx, opPurge)
	defer func() { l.finish(span, opPurge, start, err) }()

	if err := requireCaller(recipient); err != nil {
		return 0, err
	}
	err = l.tx.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := l.notifications.DeleteByRecipient(txCtx, recipient)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete notifications")
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (l *Ledger) loadForParty(ctx context.Context, caller id.Principal, claimID id.ClaimID) (*models.ClaimRecord, error) {
	claim, err := l.claims.FindByID(ctx, claimID)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	if !claim.IsParty(caller) {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not a party to this claim")
	}
	return claim, nil
}

// notify appends n. Failures are logged and counted but never fail the
// surrounding transition.
func (l *Ledger) notify(ctx context.Context, n *models.Notification) {
	if err := l.notifications.Append(ctx, n); err != nil {
		if l.metrics != nil {
			l.metrics.IncNotificationAppendFailure()
		}
		l.logger.WarnContext(ctx, "failed to append notification",
			"claim_id", n.ClaimID,
			"recipient", n.Recipient,
			"kind", n.Kind,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func requireCaller(caller id.Principal) error {
	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller principal is required")
	}
	return nil
}

func (l *Ledger) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	ctx, span := tracer.Start(ctx, "ledger."+operation, trace.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

func (l *Ledger) finish(span trace.Span, operation string, start time.Time, err error) {
	defer span.End()
	if l.metrics != nil {
		l.metrics.ObserveOperation(operation, start, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
}
