package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	"auditlink/pkg/platform/httputil"
	"auditlink/pkg/requestcontext"
)

// Service defines the ledger operations exposed over HTTP.
type Service interface {
	SubmitClaim(ctx context.Context, caller id.Principal, req models.SubmitClaimRequest) error
	EndorseClaim(ctx context.Context, caller id.Principal, claimID id.ClaimID) error
	ApproveClaim(ctx context.Context, caller id.Principal, claimID id.ClaimID) error
	ConfirmPayment(ctx context.Context, caller id.Principal, claimID id.ClaimID) error
	ListClaimsByRole(ctx context.Context, caller id.Principal) ([]*models.ClaimRecord, error)
	GetClaim(ctx context.Context, caller id.Principal, claimID id.ClaimID) (*models.ClaimRecord, error)
	GetAgreementByClaimID(ctx context.Context, caller id.Principal, claimID id.ClaimID) (*models.Agreement, error)
	ListNotifications(ctx context.Context, caller id.Principal, order models.SortOrder) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, caller id.Principal, notificationID id.NotificationID) error
}

// Handler wires ledger endpoints to the ledger service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ledger handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts ledger endpoints. The router must already run the auth
// middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/me/principal", h.HandleGetCallerPrincipal)

	r.Route("/v1/claims", func(r chi.Router) {
		r.Post("/", h.HandleSubmitClaim)
		r.Get("/", h.HandleListClaims)
		r.Get("/{claimID}", h.HandleGetClaim)
		r.Get("/{claimID}/agreement", h.HandleGetAgreement)
		r.Post("/{claimID}/endorse", h.HandleEndorseClaim)
		r.Post("/{claimID}/approve", h.HandleApproveClaim)
		r.Post("/{claimID}/confirm-payment", h.HandleConfirmPayment)
	})

	r.Get("/v1/notifications", h.HandleListNotifications)
	r.Post("/v1/notifications/{notificationID}/read", h.HandleMarkNotificationRead)
}

// HandleGetCallerPrincipal handles GET /v1/me/principal.
func (h *Handler) HandleGetCallerPrincipal(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PrincipalResponse{Principal: caller.String()})
}

// HandleSubmitClaim handles POST /v1/claims.
func (h *Handler) HandleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req SubmitClaimRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid submit claim request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	domainReq := req.ToDomain()
	if err := h.service.SubmitClaim(ctx, caller, domainReq); err != nil {
		h.writeServiceError(ctx, w, "submit claim", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SubmitClaimResponse{
		ClaimID: domainReq.ClaimID,
		Status:  string(models.StatusPendingPatientEndorsement),
	})
}

// HandleListClaims handles GET /v1/claims.
func (h *Handler) HandleListClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	claims, err := h.service.ListClaimsByRole(ctx, caller)
	if err != nil {
		h.writeServiceError(ctx, w, "list claims", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaims(claims, caller))
}

// HandleGetClaim handles GET /v1/claims/{claimID}.
func (h *Handler) HandleGetClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, claimID, ok := h.callerAndClaim(w, r)
	if !ok {
		return
	}

	claim, err := h.service.GetClaim(ctx, caller, claimID)
	if err != nil {
		h.writeServiceError(ctx, w, "get claim", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaim(claim, caller))
}

// HandleGetAgreement handles GET /v1/claims/{claimID}/agreement. The
// agreement field is null until the patient endorses.
func (h *Handler) HandleGetAgreement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, claimID, ok := h.callerAndClaim(w, r)
	if !ok {
		return
	}

	agreement, err := h.service.GetAgreementByClaimID(ctx, caller, claimID)
	if err != nil {
		h.writeServiceError(ctx, w, "get agreement", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AgreementEnvelope{Agreement: FromAgreement(agreement)})
}

// HandleEndorseClaim handles POST /v1/claims/{claimID}/endorse.
func (h *Handler) HandleEndorseClaim(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "endorse claim", h.service.EndorseClaim)
}

// HandleApproveClaim handles POST /v1/claims/{claimID}/approve.
func (h *Handler) HandleApproveClaim(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve claim", h.service.ApproveClaim)
}

// HandleConfirmPayment handles POST /v1/claims/{claimID}/confirm-payment.
func (h *Handler) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "confirm payment", h.service.ConfirmPayment)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	fn func(context.Context, id.Principal, id.ClaimID) error,
) {
	ctx := r.Context()
	caller, claimID, ok := h.callerAndClaim(w, r)
	if !ok {
		return
	}
	if err := fn(ctx, caller, claimID); err != nil {
		h.writeServiceError(ctx, w, operation, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListNotifications handles GET /v1/notifications?order=asc|desc.
func (h *Handler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	order, err := models.ParseSortOrder(r.URL.Query().Get("order"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListNotifications(ctx, caller, order)
	if err != nil {
		h.writeServiceError(ctx, w, "list notifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromNotifications(list))
}

// HandleMarkNotificationRead handles POST /v1/notifications/{notificationID}/read.
func (h *Handler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.MarkNotificationRead(ctx, caller, notificationID); err != nil {
		h.writeServiceError(ctx, w, "mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.Principal, bool) {
	caller := requestcontext.Principal(r.Context())
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return caller, true
}

func (h *Handler) callerAndClaim(w http.ResponseWriter, r *http.Request) (id.Principal, id.ClaimID, bool) {
	caller, ok := h.caller(w, r)
	if !ok {
		return "", "", false
	}
	claimID, err := parseClaimIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	return caller, claimID, true
}

// writeServiceError logs at a level matching the error class and writes it.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, operation+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.InfoContext(ctx, operation+" rejected",
			"request_id", requestcontext.RequestID(ctx),
			"code", dErrors.CodeOf(err),
		)
	}
	httputil.WriteError(w, err)
}
