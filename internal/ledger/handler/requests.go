package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
)

// SubmitClaimRequest is the HTTP request body for POST /v1/claims. Amount
// is in minor currency units.
type SubmitClaimRequest struct {
	ClaimID       string `json:"claim_id"`
	Patient       string `json:"patient"`
	Insurer       string `json:"insurer"`
	EncryptedHash string `json:"encrypted_hash"`
	Amount        int64  `json:"amount"`
	ProcedureCode string `json:"procedure_code,omitempty"`
}

// ToDomain converts the body. Validation happens in the service.
func (r SubmitClaimRequest) ToDomain() models.SubmitClaimRequest {
	return models.SubmitClaimRequest{
		ClaimID:       r.ClaimID,
		Patient:       r.Patient,
		Insurer:       r.Insurer,
		EncryptedHash: r.EncryptedHash,
		Amount:        r.Amount,
		ProcedureCode: r.ProcedureCode,
	}
}

// parseClaimIDParam reads {claimID}. chi routes on r.URL.RawPath when it is
// set and leaves the segment escaped; otherwise the segment comes from the
// already decoded r.URL.Path and must not be unescaped again.
func parseClaimIDParam(r *http.Request) (id.ClaimID, error) {
	param := chi.URLParam(r, "claimID")
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(param)
		if err != nil {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid claim id")
		}
		param = decoded
	}
	return id.ParseClaimID(param)
}
