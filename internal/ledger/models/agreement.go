package models

import (
	"time"

	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
)

// Agreement is the immutable proof of patient consent, created once per
// claim at endorsement time. Values are snapshots of the claim; there is no
// update or delete path.
type Agreement struct {
	ClaimID       id.ClaimID
	Provider      id.Principal
	Patient       id.Principal
	EncryptedHash string
	CreatedAt     time.Time
}

// NewAgreement snapshots an endorsed claim.
func NewAgreement(claim *ClaimRecord, now time.Time) (*Agreement, error) {
	if !claim.Signatures().PatientSigned {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "agreement requires a patient-endorsed claim")
	}
	return &Agreement{
		ClaimID:       claim.ID,
		Provider:      claim.Provider,
		Patient:       claim.Patient,
		EncryptedHash: claim.EncryptedHash,
		CreatedAt:     now,
	}, nil
}
