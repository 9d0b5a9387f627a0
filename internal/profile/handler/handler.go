package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"auditlink/internal/profile/models"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	"auditlink/pkg/platform/httputil"
	"auditlink/pkg/requestcontext"
)

// Service defines the profile operations exposed over HTTP.
type Service interface {
	GetCallerProfile(ctx context.Context, caller id.Principal) (*models.Profile, error)
	SaveCallerProfile(ctx context.Context, caller id.Principal, req models.SaveProfileRequest) (*models.Profile, error)
	DeleteCallerAccount(ctx context.Context, caller id.Principal) error
	ListByRole(ctx context.Context, caller id.Principal, role models.Role) ([]*models.Profile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts profile endpoints behind the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/me/profile", h.HandleGetProfile)
	r.Put("/v1/me/profile", h.HandleSaveProfile)
	r.Delete("/v1/me/profile", h.HandleDeleteAccount)
	r.Get("/v1/profiles", h.HandleListProfiles)
}

type ProfileResponse struct {
	Principal   string    `json:"principal"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProfileEnvelope struct {
	Profile *ProfileResponse `json:"profile"`
}

type ProfileListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

func toResponse(p *models.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		Principal:   p.Principal.String(),
		DisplayName: p.DisplayName,
		Role:        p.Role.String(),
		UpdatedAt:   p.UpdatedAt,
	}
}

// HandleGetProfile handles GET /v1/me/profile. profile is null until the
// caller saves one.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.GetCallerProfile(ctx, requestcontext.Principal(ctx))
	if err != nil {
		h.fail(ctx, w, "get profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProfileEnvelope{Profile: toResponse(p)})
}

// HandleSaveProfile handles PUT /v1/me/profile.
func (h *Handler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SaveProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.SaveCallerProfile(ctx, requestcontext.Principal(ctx), req)
	if err != nil {
		h.fail(ctx, w, "save profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProfileEnvelope{Profile: toResponse(p)})
}

// HandleDeleteAccount handles DELETE /v1/me/profile.
func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.DeleteCallerAccount(ctx, requestcontext.Principal(ctx)); err != nil {
		h.fail(ctx, w, "delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListProfiles handles GET /v1/profiles?role=patient|provider|insurer.
func (h *Handler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role, err := models.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := h.service.ListByRole(ctx, requestcontext.Principal(ctx), role)
	if err != nil {
		h.fail(ctx, w, "list profiles", err)
		return
	}
	out := make([]ProfileResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, ProfileListResponse{Profiles: out})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, operation+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
