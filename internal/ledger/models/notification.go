package models

import (
	"fmt"
	"time"

	id "auditlink/pkg/domain"
	dErrors "auditlink/pkg/domain-errors"
)

// NotificationKind names the transition that produced a notification.
type NotificationKind string

const (
	NotificationClaimEndorsed NotificationKind = "claim_endorsed"
	NotificationClaimApproved NotificationKind = "claim_approved"
)

// Notification is a per-recipient message appended by a ledger transition.
// Read only ever goes false -> true.
type Notification struct {
	ID        id.NotificationID
	Recipient id.Principal
	ClaimID   id.ClaimID
	Kind      NotificationKind
	Message   string
	CreatedAt time.Time
	Read      bool
	ReadAt    *time.Time
}

// NewNotification builds an unread notification.
func NewNotification(recipient id.Principal, claimID id.ClaimID, kind NotificationKind, message string, now time.Time) *Notification {
	return &Notification{
		ID:        id.NewNotificationID(),
		Recipient: recipient,
		ClaimID:   claimID,
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}
}

// EndorsedNotice tells the insurer a claim awaits review.
func EndorsedNotice(claim *ClaimRecord, now time.Time) *Notification {
	msg := fmt.Sprintf("Claim %s for %s was endorsed by the patient and is awaiting your review.",
		claim.ID, FormatAmount(claim.Amount))
	return NewNotification(claim.Insurer, claim.ID, NotificationClaimEndorsed, msg, now)
}

// ApprovedNotice tells the provider payment was issued.
func ApprovedNotice(claim *ClaimRecord, now time.Time) *Notification {
	msg := fmt.Sprintf("Claim %s was approved by the insurer and payment of %s has been issued. Please confirm receipt.",
		claim.ID, FormatAmount(claim.Amount))
	return NewNotification(claim.Provider, claim.ID, NotificationClaimApproved, msg, now)
}

// MarkRead sets Read for the recipient. changed is false when the
// notification was already read, which is not an error.
func (n *Notification) MarkRead(caller id.Principal, now time.Time) (changed bool, err error) {
	if caller != n.Recipient {
		return false, dErrors.New(dErrors.CodeForbidden, "caller is not the recipient of this notification")
	}
	if n.Read {
		return false, nil
	}
	n.Read = true
	n.ReadAt = &now
	return true, nil
}

// Clone returns an independent copy.
func (n *Notification) Clone() *Notification {
	cp := *n
	if n.ReadAt != nil {
		t := *n.ReadAt
		cp.ReadAt = &t
	}
	return &cp
}

// SortOrder orders notification listings by creation time.
type SortOrder int

const (
	OldestFirst SortOrder = iota
	NewestFirst
)

// ParseSortOrder accepts "", "asc" and "desc".
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "asc":
		return OldestFirst, nil
	case "desc":
		return NewestFirst, nil
	default:
		return OldestFirst, dErrors.New(dErrors.CodeBadRequest, "order must be asc or desc")
	}
}
