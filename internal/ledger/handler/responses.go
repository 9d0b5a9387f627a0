package handler

import (
	"time"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
)

type PrincipalResponse struct {
	Principal string `json:"principal"`
}

type SubmitClaimResponse struct {
	ClaimID string `json:"claim_id"`
	Status  string `json:"status"`
}

// ClaimResponse is one claim as seen by a party. Roles lists every role the
// caller holds on the claim.
type ClaimResponse struct {
	ClaimID          string    `json:"claim_id"`
	Provider         string    `json:"provider"`
	Patient          string    `json:"patient"`
	Insurer          string    `json:"insurer"`
	EncryptedHash    string    `json:"encrypted_hash"`
	Amount           int64     `json:"amount"`
	AmountDisplay    string    `json:"amount_display"`
	ProcedureCode    string    `json:"procedure_code,omitempty"`
	Status           string    `json:"status"`
	ProviderSigned   bool      `json:"provider_signed"`
	PatientSigned    bool      `json:"patient_signed"`
	InsurerSigned    bool      `json:"insurer_signed"`
	PaymentConfirmed bool      `json:"payment_confirmed"`
	Roles            []string  `json:"roles"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ClaimListResponse struct {
	Claims []ClaimResponse `json:"claims"`
}

type AgreementResponse struct {
	ClaimID       string    `json:"claim_id"`
	Provider      string    `json:"provider"`
	Patient       string    `json:"patient"`
	EncryptedHash string    `json:"encrypted_hash"`
	CreatedAt     time.Time `json:"created_at"`
}

type AgreementEnvelope struct {
	Agreement *AgreementResponse `json:"agreement"`
}

type NotificationResponse struct {
	ID        string     `json:"id"`
	ClaimID   string     `json:"claim_id"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

func FromClaim(c *models.ClaimRecord, caller id.Principal) ClaimResponse {
	sig := c.Signatures()
	parties := c.PartiesOf(caller)
	roles := make([]string, 0, len(parties))
	for _, p := range parties {
		roles = append(roles, string(p))
	}
	return ClaimResponse{
		ClaimID:          c.ID.String(),
		Provider:         c.Provider.String(),
		Patient:          c.Patient.String(),
		Insurer:          c.Insurer.String(),
		EncryptedHash:    c.EncryptedHash,
		Amount:           c.Amount,
		AmountDisplay:    models.FormatAmount(c.Amount),
		ProcedureCode:    c.ProcedureCode,
		Status:           c.Status().String(),
		ProviderSigned:   sig.ProviderSigned,
		PatientSigned:    sig.PatientSigned,
		InsurerSigned:    sig.InsurerSigned,
		PaymentConfirmed: sig.PaymentConfirmed,
		Roles:            roles,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// FromClaims never returns a nil slice so the body is "claims": [].
func FromClaims(claims []*models.ClaimRecord, caller id.Principal) ClaimListResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, FromClaim(c, caller))
	}
	return ClaimListResponse{Claims: out}
}

func FromAgreement(a *models.Agreement) *AgreementResponse {
	if a == nil {
		return nil
	}
	return &AgreementResponse{
		ClaimID:       a.ClaimID.String(),
		Provider:      a.Provider.String(),
		Patient:       a.Patient.String(),
		EncryptedHash: a.EncryptedHash,
		CreatedAt:     a.CreatedAt,
	}
}

func FromNotifications(list []*models.Notification) NotificationListResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:        n.ID.String(),
			ClaimID:   n.ClaimID.String(),
			Kind:      string(n.Kind),
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
			ReadAt:    n.ReadAt,
		})
	}
	return NotificationListResponse{Notifications: out}
}
