package models

// ClaimStatus is the lifecycle position of a claim.
type ClaimStatus string

const (
	StatusPendingPatientEndorsement          ClaimStatus = "pending_patient_endorsement"
	StatusPendingInsuranceReview             ClaimStatus = "pending_insurance_review"
	StatusPendingProviderPaymentConfirmation ClaimStatus = "pending_provider_payment_confirmation"
	StatusCompleted                          ClaimStatus = "completed"
)

func (s ClaimStatus) String() string { return string(s) }

// IsValid reports whether s is a known status.
func (s ClaimStatus) IsValid() bool {
	switch s {
	case StatusPendingPatientEndorsement, StatusPendingInsuranceReview,
		StatusPendingProviderPaymentConfirmation, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ClaimStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// Signatures are the monotonic approval flags of a claim. Each flag goes
// false -> true exactly once and the flags are set strictly in order:
// provider, patient, insurer, payment confirmation.
type Signatures struct {
	ProviderSigned   bool
	PatientSigned    bool
	InsurerSigned    bool
	PaymentConfirmed bool
}

// DeriveStatus maps a flag combination to its status. ok is false for
// combinations no sequence of transitions can produce (a later flag set
// without an earlier one).
func DeriveStatus(s Signatures) (status ClaimStatus, ok bool) {
	switch s {
	case Signatures{ProviderSigned: true}:
		return StatusPendingPatientEndorsement, true
	case Signatures{ProviderSigned: true, PatientSigned: true}:
		return StatusPendingInsuranceReview, true
	case Signatures{ProviderSigned: true, PatientSigned: true, InsurerSigned: true}:
		return StatusPendingProviderPaymentConfirmation, true
	case Signatures{ProviderSigned: true, PatientSigned: true, InsurerSigned: true, PaymentConfirmed: true}:
		return StatusCompleted, true
	}
	return "", false
}
