package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
)

const (
	maxEncryptedHashLen = 1024
	maxProcedureCodeLen = 64
)

// ClaimRecord is the aggregate root of the ledger.
//
// Invariants:
//   - ID, parties, EncryptedHash, Amount, ProcedureCode and CreatedAt never
//     change after NewClaim
//   - Amount is non-negative minor currency units
//   - status always equals DeriveStatus(signatures); both are unexported and
//     change only through Endorse, Approve and ConfirmPayment
//   - ProviderSigned is true from creation
//
// Authorization is local to the claim: a caller acts as a party only by
// being equal to the principal recorded for that party.
type ClaimRecord struct {
	ID            id.ClaimID
	Provider      id.Principal
	Patient       id.Principal
	Insurer       id.Principal
	EncryptedHash string
	Amount        int64
	ProcedureCode string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	status     ClaimStatus
	signatures Signatures
}

// NewClaim builds a claim submitted by provider. Every input problem is
// reported as CodeValidation.
func NewClaim(provider id.Principal, req SubmitClaimRequest, now time.Time) (*ClaimRecord, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if provider.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "provider is required")
	}
	claimID, err := id.ParseClaimID(req.ClaimID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid claim_id")
	}
	patient, err := id.ParsePrincipal(req.Patient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid patient")
	}
	insurer, err := id.ParsePrincipal(req.Insurer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid insurer")
	}

	sig := Signatures{ProviderSigned: true}
	status, _ := DeriveStatus(sig)
	return &ClaimRecord{
		ID:            claimID,
		Provider:      provider,
		Patient:       patient,
		Insurer:       insurer,
		EncryptedHash: req.EncryptedHash,
		Amount:        req.Amount,
		ProcedureCode: req.ProcedureCode,
		CreatedAt:     now,
		UpdatedAt:     now,
		status:        status,
		signatures:    sig,
	}, nil
}

// RestoreClaim rehydrates a persisted claim. It refuses rows whose stored
// status disagrees with the stored flags.
func RestoreClaim(c ClaimRecord, status ClaimStatus, sig Signatures) (*ClaimRecord, error) {
	derived, ok := DeriveStatus(sig)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("claim %s has an impossible signature combination", c.ID))
	}
	if derived != status {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("claim %s stored status %q does not match signatures (%q)", c.ID, status, derived))
	}
	c.status = status
	c.signatures = sig
	return &c, nil
}

// Status returns the current lifecycle status.
func (c *ClaimRecord) Status() ClaimStatus { return c.status }

// Signatures returns a copy of the approval flags.
func (c *ClaimRecord) Signatures() Signatures { return c.signatures }

// Clone returns an independent copy; stores hand out clones only.
func (c *ClaimRecord) Clone() *ClaimRecord {
	cp := *c
	return &cp
}

// Party is the role a principal holds on a specific claim.
type Party string

const (
	PartyProvider Party = "provider"
	PartyPatient  Party = "patient"
	PartyInsurer  Party = "insurer"
)

// PartiesOf returns every role p holds on the claim (a principal may hold
// more than one).
func (c *ClaimRecord) PartiesOf(p id.Principal) []Party {
	if p.IsNil() {
		return nil
	}
	var parties []Party
	if c.Provider == p {
		parties = append(parties, PartyProvider)
	}
	if c.Patient == p {
		parties = append(parties, PartyPatient)
	}
	if c.Insurer == p {
		parties = append(parties, PartyInsurer)
	}
	return parties
}

// IsParty reports whether p is provider, patient or insurer of the claim.
func (c *ClaimRecord) IsParty(p id.Principal) bool {
	return len(c.PartiesOf(p)) > 0
}

// CanEndorse checks the patient endorsement guard.
func (c *ClaimRecord) CanEndorse(caller id.Principal) error {
	if caller != c.Patient {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the patient named on this claim")
	}
	if c.status != StatusPendingPatientEndorsement || c.signatures.PatientSigned {
		return invalidState(c, "endorse")
	}
	return nil
}

// Endorse records the patient's endorsement.
func (c *ClaimRecord) Endorse(caller id.Principal, now time.Time) error {
	if err := c.CanEndorse(caller); err != nil {
		return err
	}
	return c.advance(now, func(s *Signatures) { s.PatientSigned = true })
}

// CanApprove checks the insurer approval guard.
func (c *ClaimRecord) CanApprove(caller id.Principal) error {
	if caller != c.Insurer {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the insurer named on this claim")
	}
	if c.status != StatusPendingInsuranceReview || c.signatures.InsurerSigned {
		return invalidState(c, "approve")
	}
	return nil
}

// Approve records the insurer's approval. Payment has already been
// initiated by the caller of this method.
func (c *ClaimRecord) Approve(caller id.Principal, now time.Time) error {
	if err := c.CanApprove(caller); err != nil {
		return err
	}
	return c.advance(now, func(s *Signatures) { s.InsurerSigned = true })
}

// CanConfirmPayment checks the provider payment-confirmation guard.
func (c *ClaimRecord) CanConfirmPayment(caller id.Principal) error {
	if caller != c.Provider {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the provider who submitted this claim")
	}
	if c.status != StatusPendingProviderPaymentConfirmation || c.signatures.PaymentConfirmed {
		return invalidState(c, "confirm payment for")
	}
	return nil
}

// ConfirmPayment records the provider's receipt of payment; the claim is
// then terminal.
func (c *ClaimRecord) ConfirmPayment(caller id.Principal, now time.Time) error {
	if err := c.CanConfirmPayment(caller); err != nil {
		return err
	}
	return c.advance(now, func(s *Signatures) { s.PaymentConfirmed = true })
}

// advance is the only place status is assigned.
func (c *ClaimRecord) advance(now time.Time, sign func(*Signatures)) error {
	next := c.signatures
	sign(&next)
	status, ok := DeriveStatus(next)
	if !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "transition would produce an impossible signature combination")
	}
	c.signatures = next
	c.status = status
	c.UpdatedAt = now
	return nil
}

func invalidState(c *ClaimRecord, action string) error {
	return dErrors.New(dErrors.CodeInvalidState,
		fmt.Sprintf("cannot %s claim %s in status %s", action, c.ID, c.status))
}

// FormatAmount renders minor units as a decimal string ("150.00").
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// SubmitClaimRequest is the provider's submission payload.
type SubmitClaimRequest struct {
	ClaimID       string `json:"claim_id"`
	Patient       string `json:"patient"`
	Insurer       string `json:"insurer"`
	EncryptedHash string `json:"encrypted_hash"`
	Amount        int64  `json:"amount"`
	ProcedureCode string `json:"procedure_code,omitempty"`
}

// Normalize trims free-text fields. Identifiers are validated as-is.
func (r *SubmitClaimRequest) Normalize() {
	r.EncryptedHash = strings.TrimSpace(r.EncryptedHash)
	r.ProcedureCode = strings.TrimSpace(r.ProcedureCode)
}

// Validate reports the first missing or out-of-range field.
func (r *SubmitClaimRequest) Validate() error {
	switch {
	case r.ClaimID == "":
		return dErrors.New(dErrors.CodeValidation, "claim_id is required")
	case r.Patient == "":
		return dErrors.New(dErrors.CodeValidation, "patient is required")
	case r.Insurer == "":
		return dErrors.New(dErrors.CodeValidation, "insurer is required")
	case r.EncryptedHash == "":
		return dErrors.New(dErrors.CodeValidation, "encrypted_hash is required")
	case len(r.EncryptedHash) > maxEncryptedHashLen:
		return dErrors.New(dErrors.CodeValidation, "encrypted_hash is too long")
	case !isPrintable(r.EncryptedHash):
		return dErrors.New(dErrors.CodeValidation, "encrypted_hash contains invalid characters")
	case r.Amount < 0:
		return dErrors.New(dErrors.CodeValidation, "amount must not be negative")
	case len(r.ProcedureCode) > maxProcedureCodeLen:
		return dErrors.New(dErrors.CodeValidation, "procedure_code is too long")
	case !isPrintable(r.ProcedureCode):
		return dErrors.New(dErrors.CodeValidation, "procedure_code contains invalid characters")
	}
	return nil
}

// isPrintable reports valid UTF-8 without control characters. Postgres text
// columns refuse NUL.
func isPrintable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
