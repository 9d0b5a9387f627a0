package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"auditlink/internal/profile/handler/mocks"
	"auditlink/internal/profile/models"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	"auditlink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const caller = id.Principal("patient-1")

func newRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(r.Context(), caller)))
		})
	})
	h.Register(r)
	return r, svc
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetProfile(t *testing.T) {
	t.Run("absent profile is null", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().GetCallerProfile(gomock.Any(), caller).Return(nil, nil)

		rec := serve(router, http.MethodGet, "/v1/me/profile", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"profile":null}`, rec.Body.String())
	})

	t.Run("present", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().GetCallerProfile(gomock.Any(), caller).Return(&models.Profile{
			Principal:   caller,
			DisplayName: "Ada",
			Role:        models.RolePatient,
			UpdatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}, nil)

		rec := serve(router, http.MethodGet, "/v1/me/profile", "")
		assert.JSONEq(t, `{"profile":{"principal":"patient-1","display_name":"Ada","role":"patient","updated_at":"2026-01-02T03:04:05Z"}}`, rec.Body.String())
	})
}

func TestSaveProfile(t *testing.T) {
	router, svc := newRouter(t)
	svc.EXPECT().SaveCallerProfile(gomock.Any(), caller, models.SaveProfileRequest{DisplayName: "Ada", Role: "patient"}).
		Return(&models.Profile{Principal: caller, DisplayName: "Ada", Role: models.RolePatient}, nil)

	rec := serve(router, http.MethodPut, "/v1/me/profile", `{"display_name":"Ada","role":"patient"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.EXPECT().SaveCallerProfile(gomock.Any(), caller, gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeValidation, "role must be one of patient, provider, insurer"))
	rec = serve(router, http.MethodPut, "/v1/me/profile", `{"display_name":"Ada","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	router, svc := newRouter(t)
	svc.EXPECT().DeleteCallerAccount(gomock.Any(), caller).Return(nil)
	rec := serve(router, http.MethodDelete, "/v1/me/profile", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	svc.EXPECT().DeleteCallerAccount(gomock.Any(), caller).Return(dErrors.New(dErrors.CodeNotFound, "account not found"))
	rec = serve(router, http.MethodDelete, "/v1/me/profile", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","error_description":"account not found"}`, rec.Body.String())
}

func TestListProfiles(t *testing.T) {
	router, svc := newRouter(t)
	svc.EXPECT().ListByRole(gomock.Any(), caller, models.RoleInsurer).Return(nil, nil)
	rec := serve(router, http.MethodGet, "/v1/profiles?role=insurer", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profiles":[]}`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/v1/profiles", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
