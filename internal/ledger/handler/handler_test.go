package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"auditlink/internal/ledger/handler/mocks"
	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
	"auditlink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const (
	provider = id.Principal("provider-1")
	patient  = id.Principal("patient-1")
	insurer  = id.Principal("insurer-1")
)

var fixedNow = time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

type LedgerHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

func TestLedgerHandlerSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerSuite))
}

func (s *LedgerHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(principalFromHeader)
	h.Register(r)
	s.router = r
}

// principalFromHeader stands in for the auth middleware.
func principalFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.Header.Get("X-Test-Principal"); p != "" {
			r = r.WithContext(requestcontext.WithPrincipal(r.Context(), id.Principal(p)))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *LedgerHandlerSuite) do(method, path string, caller id.Principal, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set("X-Test-Principal", caller.String())
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func newClaim(t *testing.T) *models.ClaimRecord {
	t.Helper()
	c, err := models.NewClaim(provider, models.SubmitClaimRequest{
		ClaimID:       "CLM-1",
		Patient:       patient.String(),
		Insurer:       insurer.String(),
		EncryptedHash: "enc:abc",
		Amount:        15000,
	}, fixedNow)
	require.NoError(t, err)
	return c
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func (s *LedgerHandlerSuite) TestGetCallerPrincipal() {
	rec := s.do(http.MethodGet, "/v1/me/principal", patient, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"principal":"patient-1"}`, rec.Body.String())
}

func (s *LedgerHandlerSuite) TestMissingCallerIsUnauthorized() {
	rec := s.do(http.MethodGet, "/v1/claims", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("unauthorized", decodeError(s.T(), rec))
}

func (s *LedgerHandlerSuite) TestSubmitClaim() {
	s.Run("created", func() {
		s.service.EXPECT().SubmitClaim(gomock.Any(), provider, models.SubmitClaimRequest{
			ClaimID:       "CLM-1",
			Patient:       "patient-1",
			Insurer:       "insurer-1",
			EncryptedHash: "enc:abc",
			Amount:        15000,
		}).Return(nil)

		rec := s.do(http.MethodPost, "/v1/claims", provider, SubmitClaimRequest{
			ClaimID:       "CLM-1",
			Patient:       "patient-1",
			Insurer:       "insurer-1",
			EncryptedHash: "enc:abc",
			Amount:        15000,
		})
		s.Equal(http.StatusCreated, rec.Code)
		s.JSONEq(`{"claim_id":"CLM-1","status":"pending_patient_endorsement"}`, rec.Body.String())
	})

	s.Run("duplicate", func() {
		s.service.EXPECT().SubmitClaim(gomock.Any(), provider, gomock.Any()).
			Return(dErrors.New(dErrors.CodeConflict, "claim already submitted"))

		rec := s.do(http.MethodPost, "/v1/claims", provider, SubmitClaimRequest{ClaimID: "CLM-1"})
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("conflict", decodeError(s.T(), rec))
	})

	s.Run("validation error", func() {
		s.service.EXPECT().SubmitClaim(gomock.Any(), provider, gomock.Any()).
			Return(dErrors.New(dErrors.CodeValidation, "amount must not be negative"))

		rec := s.do(http.MethodPost, "/v1/claims", provider, SubmitClaimRequest{ClaimID: "CLM-2", Amount: -1})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_error", decodeError(s.T(), rec))
	})

	s.Run("unknown field rejected before the service", func() {
		rec := s.do(http.MethodPost, "/v1/claims", provider, map[string]any{"claim_id": "x", "status": "completed"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *LedgerHandlerSuite) TestTransitions() {
	tests := []struct {
		name   string
		path   string
		caller id.Principal
		expect func(err error) *gomock.Call
		err    error
		want   int
	}{
		{
			name:   "endorse",
			path:   "/v1/claims/CLM-1/endorse",
			caller: patient,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().EndorseClaim(gomock.Any(), patient, id.ClaimID("CLM-1")).Return(err)
			},
			want: http.StatusNoContent,
		},
		{
			name:   "approve by wrong party",
			path:   "/v1/claims/CLM-1/approve",
			caller: patient,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().ApproveClaim(gomock.Any(), patient, id.ClaimID("CLM-1")).Return(err)
			},
			err:  dErrors.New(dErrors.CodeForbidden, "caller is not the insurer named on this claim"),
			want: http.StatusForbidden,
		},
		{
			name:   "approve payment failure",
			path:   "/v1/claims/CLM-1/approve",
			caller: insurer,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().ApproveClaim(gomock.Any(), insurer, id.ClaimID("CLM-1")).Return(err)
			},
			err:  dErrors.New(dErrors.CodePaymentFailed, "payment initiation failed"),
			want: http.StatusBadGateway,
		},
		{
			name:   "confirm out of order",
			path:   "/v1/claims/CLM-1/confirm-payment",
			caller: provider,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().ConfirmPayment(gomock.Any(), provider, id.ClaimID("CLM-1")).Return(err)
			},
			err:  dErrors.New(dErrors.CodeInvalidState, "cannot confirm payment"),
			want: http.StatusConflict,
		},
		{
			name:   "unknown claim",
			path:   "/v1/claims/CLM-404/endorse",
			caller: patient,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().EndorseClaim(gomock.Any(), patient, id.ClaimID("CLM-404")).Return(err)
			},
			err:  dErrors.New(dErrors.CodeNotFound, "claim not found"),
			want: http.StatusNotFound,
		},
		{
			name:   "percent-encoded claim id",
			path:   "/v1/claims/CLM%2D1/endorse",
			caller: patient,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().EndorseClaim(gomock.Any(), patient, id.ClaimID("CLM-1")).Return(err)
			},
			want: http.StatusNoContent,
		},
		{
			name:   "escaped percent stays literal",
			path:   "/v1/claims/A%2541/endorse",
			caller: patient,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().EndorseClaim(gomock.Any(), patient, id.ClaimID("A%41")).Return(err)
			},
			want: http.StatusNoContent,
		},
		{
			name:   "trailing escaped percent",
			path:   "/v1/claims/100%25/endorse",
			caller: patient,
			expect: func(err error) *gomock.Call {
				return s.service.EXPECT().EndorseClaim(gomock.Any(), patient, id.ClaimID("100%")).Return(err)
			},
			want: http.StatusNoContent,
		},
		{
			name:   "claim id with whitespace never reaches the service",
			path:   "/v1/claims/CLM%201/endorse",
			caller: patient,
			want:   http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			if tt.expect != nil {
				tt.expect(tt.err)
			}
			rec := s.do(http.MethodPost, tt.path, tt.caller, nil)
			s.Equal(tt.want, rec.Code)
		})
	}
}

func (s *LedgerHandlerSuite) TestInternalErrorHidesMessage() {
	s.service.EXPECT().EndorseClaim(gomock.Any(), patient, id.ClaimID("CLM-1")).
		Return(dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeInternal, "database unavailable at 10.0.0.5"))

	rec := s.do(http.MethodPost, "/v1/claims/CLM-1/endorse", patient, nil)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.JSONEq(`{"error":"internal_error"}`, rec.Body.String())
}

func (s *LedgerHandlerSuite) TestListClaims() {
	s.Run("empty list is an array", func() {
		s.service.EXPECT().ListClaimsByRole(gomock.Any(), insurer).Return(nil, nil)
		rec := s.do(http.MethodGet, "/v1/claims", insurer, nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"claims":[]}`, rec.Body.String())
	})

	s.Run("includes caller roles and status", func() {
		s.service.EXPECT().ListClaimsByRole(gomock.Any(), patient).Return([]*models.ClaimRecord{newClaim(s.T())}, nil)
		rec := s.do(http.MethodGet, "/v1/claims", patient, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp ClaimListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp.Claims, 1)
		got := resp.Claims[0]
		s.Equal("CLM-1", got.ClaimID)
		s.Equal("pending_patient_endorsement", got.Status)
		s.Equal("150.00", got.AmountDisplay)
		s.True(got.ProviderSigned)
		s.False(got.PatientSigned)
		s.Equal([]string{"patient"}, got.Roles)
	})
}

func (s *LedgerHandlerSuite) TestGetAgreement() {
	s.Run("null before endorsement", func() {
		s.service.EXPECT().GetAgreementByClaimID(gomock.Any(), provider, id.ClaimID("CLM-1")).Return(nil, nil)
		rec := s.do(http.MethodGet, "/v1/claims/CLM-1/agreement", provider, nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"agreement":null}`, rec.Body.String())
	})

	s.Run("present after endorsement", func() {
		s.service.EXPECT().GetAgreementByClaimID(gomock.Any(), patient, id.ClaimID("CLM-1")).Return(&models.Agreement{
			ClaimID:       "CLM-1",
			Provider:      provider,
			Patient:       patient,
			EncryptedHash: "enc:abc",
			CreatedAt:     fixedNow,
		}, nil)
		rec := s.do(http.MethodGet, "/v1/claims/CLM-1/agreement", patient, nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"agreement":{"claim_id":"CLM-1","provider":"provider-1","patient":"patient-1","encrypted_hash":"enc:abc","created_at":"2026-02-10T09:30:00Z"}}`, rec.Body.String())
	})
}

func (s *LedgerHandlerSuite) TestNotifications() {
	s.Run("default order", func() {
		n := models.NewNotification(insurer, "CLM-1", models.NotificationClaimEndorsed, "awaiting review", fixedNow)
		s.service.EXPECT().ListNotifications(gomock.Any(), insurer, models.OldestFirst).Return([]*models.Notification{n}, nil)

		rec := s.do(http.MethodGet, "/v1/notifications", insurer, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp NotificationListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp.Notifications, 1)
		s.Equal(n.ID.String(), resp.Notifications[0].ID)
		s.False(resp.Notifications[0].Read)
	})

	s.Run("newest first", func() {
		s.service.EXPECT().ListNotifications(gomock.Any(), insurer, models.NewestFirst).Return(nil, nil)
		rec := s.do(http.MethodGet, "/v1/notifications?order=desc", insurer, nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"notifications":[]}`, rec.Body.String())
	})

	s.Run("bad order", func() {
		rec := s.do(http.MethodGet, "/v1/notifications?order=sideways", insurer, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("mark read", func() {
		nid := id.NewNotificationID()
		s.service.EXPECT().MarkNotificationRead(gomock.Any(), insurer, nid).Return(nil)
		rec := s.do(http.MethodPost, "/v1/notifications/"+nid.String()+"/read", insurer, nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("mark read with malformed id", func() {
		rec := s.do(http.MethodPost, "/v1/notifications/not-a-uuid/read", insurer, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestFromClaimsNeverNil(t *testing.T) {
	assert.NotNil(t, FromClaims(nil, patient).Claims)
	assert.NotNil(t, FromNotifications(nil).Notifications)
	assert.Nil(t, FromAgreement(nil))
}
