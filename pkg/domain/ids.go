package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "auditlink/pkg/domain-errors"
)

const (
	maxPrincipalLen = 256
	maxClaimIDLen   = 128
)

// Principal is the opaque identity credential of a caller. It is compared by
// equality only and is the sole basis for authorization decisions.
type Principal string

// ParsePrincipal validates a principal at a trust boundary.
func ParsePrincipal(s string) (Principal, error) {
	if err := validateOpaque(s, maxPrincipalLen, "principal"); err != nil {
		return "", err
	}
	return Principal(s), nil
}

func (p Principal) String() string { return string(p) }

// IsNil reports whether the principal is unset.
func (p Principal) IsNil() bool { return p == "" }

// ClaimID is the caller-supplied unique key of a claim.
type ClaimID string

// ParseClaimID validates a claim identifier.
func ParseClaimID(s string) (ClaimID, error) {
	if err := validateOpaque(s, maxClaimIDLen, "claim id"); err != nil {
		return "", err
	}
	return ClaimID(s), nil
}

func (c ClaimID) String() string { return string(c) }

func (c ClaimID) IsNil() bool { return c == "" }

// NotificationID identifies a notification.
type NotificationID uuid.UUID

// NewNotificationID returns a random notification id.
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New())
}

// ParseNotificationID parses a non-nil UUID.
func ParseNotificationID(s string) (NotificationID, error) {
	if s == "" {
		return NotificationID{}, dErrors.New(dErrors.CodeInvalidInput, "notification id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return NotificationID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid notification id")
	}
	if parsed == uuid.Nil {
		return NotificationID{}, dErrors.New(dErrors.CodeInvalidInput, "notification id cannot be nil")
	}
	return NotificationID(parsed), nil
}

func (n NotificationID) String() string { return uuid.UUID(n).String() }

func (n NotificationID) IsNil() bool { return uuid.UUID(n) == uuid.Nil }

// validateOpaque rejects values that cannot be safely stored or echoed:
// empty, padded, oversized, invalid UTF-8, or containing whitespace/control
// or zero-width characters.
func validateOpaque(s string, maxLen int, label string) error {
	if s == "" {
		return dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > maxLen {
		return dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	if !utf8.ValidString(s) {
		return dErrors.New(dErrors.CodeInvalidInput, label+" must be valid UTF-8")
	}
	if strings.TrimSpace(s) != s {
		return dErrors.New(dErrors.CodeInvalidInput, label+" must not have surrounding whitespace")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return dErrors.New(dErrors.CodeInvalidInput, label+" contains invalid characters")
		}
	}
	return nil
}
