package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
)

const maxDisplayNameLen = 100

// Role is the application role a user picks at profile setup. It is a
// directory label only; ledger authorization never reads it.
type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
	RoleInsurer  Role = "insurer"
)

func (r Role) String() string { return string(r) }

// ParseRole accepts the three known roles.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, nil
	case RoleProvider:
		return RoleProvider, nil
	case RoleInsurer:
		return RoleInsurer, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "role is required")
	}
	return "", dErrors.New(dErrors.CodeValidation, "role must be one of patient, provider, insurer")
}

// Profile is the caller's directory entry.
type Profile struct {
	Principal   id.Principal `json:"principal"`
	DisplayName string       `json:"display_name"`
	Role        Role         `json:"role"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SaveProfileRequest creates or replaces the caller's profile.
type SaveProfileRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (r *SaveProfileRequest) Normalize() {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r *SaveProfileRequest) Validate() error {
	if r.DisplayName == "" {
		return dErrors.New(dErrors.CodeValidation, "display_name is required")
	}
	if utf8.RuneCountInString(r.DisplayName) > maxDisplayNameLen {
		return dErrors.New(dErrors.CodeValidation, "display_name must be at most 100 characters")
	}
	_, err := ParseRole(r.Role)
	return err
}

// NewProfile builds a profile for principal from a validated request.
func NewProfile(principal id.Principal, req SaveProfileRequest, now time.Time) (*Profile, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	role, _ := ParseRole(req.Role)
	return &Profile{
		Principal:   principal,
		DisplayName: req.DisplayName,
		Role:        role,
		UpdatedAt:   now,
	}, nil
}
