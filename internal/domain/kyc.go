package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// KYCStatus is the current verification state of a user.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusApproved KYCStatus = "APPROVED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// ParseKYCStatus matches s case-insensitively against the valid statuses.
func ParseKYCStatus(s string) (KYCStatus, bool) {
	switch KYCStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case KYCStatusPending:
		return KYCStatusPending, true
	case KYCStatusApproved:
		return KYCStatusApproved, true
	case KYCStatusRejected:
		return KYCStatusRejected, true
	}
	return "", false
}

// KYCAction is a reviewer decision. Only approve and reject exist; a user
// returns to PENDING only by having no decisions at all.
type KYCAction string

const (
	KYCActionApproved KYCAction = "APPROVED"
	KYCActionRejected KYCAction = "REJECTED"
)

// ParseKYCAction matches s case-insensitively against the valid actions.
func ParseKYCAction(s string) (KYCAction, bool) {
	switch KYCAction(strings.ToUpper(strings.TrimSpace(s))) {
	case KYCActionApproved:
		return KYCActionApproved, true
	case KYCActionRejected:
		return KYCActionRejected, true
	}
	return "", false
}

// Status returns the user status implied by this action.
func (a KYCAction) Status() KYCStatus {
	if a == KYCActionApproved {
		return KYCStatusApproved
	}
	return KYCStatusRejected
}

// KYCDecision is one immutable entry in a user's review history.
type KYCDecision struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	AdminID   uuid.UUID `json:"admin_id" db:"admin_id"`
	Action    KYCAction `json:"action" db:"action"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DeriveKYCStatus computes a user's status from the full decision history,
// newest decision winning. It exists so the cached kyc_status column can be
// checked against the log; the two must never disagree.
func DeriveKYCStatus(decisions []KYCDecision) KYCStatus {
	if len(decisions) == 0 {
		return KYCStatusPending
	}

	latest := decisions[0]
	for _, d := range decisions[1:] {
		if d.CreatedAt.After(latest.CreatedAt) {
			latest = d
		}
	}
	return latest.Action.Status()
}
