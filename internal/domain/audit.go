package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of compliance action being recorded.
type AuditAction string

const (
	AuditActionKYCDecision     AuditAction = "KYC_DECISION"
	AuditActionAMLFlag         AuditAction = "AML_FLAG"
	AuditActionRiskRecomputed  AuditAction = "RISK_RECOMPUTED"
	AuditActionAccountFrozen   AuditAction = "ACCOUNT_FROZEN"
	AuditActionAccountUnfrozen AuditAction = "ACCOUNT_UNFROZEN"
)

// ParseAuditAction matches s case-insensitively against the known kinds.
func ParseAuditAction(s string) (AuditAction, bool) {
	switch AuditAction(strings.ToUpper(strings.TrimSpace(s))) {
	case AuditActionKYCDecision:
		return AuditActionKYCDecision, true
	case AuditActionAMLFlag:
		return AuditActionAMLFlag, true
	case AuditActionRiskRecomputed:
		return AuditActionRiskRecomputed, true
	case AuditActionAccountFrozen:
		return AuditActionAccountFrozen, true
	case AuditActionAccountUnfrozen:
		return AuditActionAccountUnfrozen, true
	}
	return "", false
}

// AuditEntry is one immutable row in the compliance audit log. Regulatory
// retention: entries are never updated or deleted (7-year hold).
type AuditEntry struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	ActorID   uuid.UUID   `json:"actor_id" db:"actor_id"`
	Action    AuditAction `json:"action" db:"action"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Detail    *string     `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// AuditFilter narrows audit log queries. Nil fields match everything.
type AuditFilter struct {
	ActorID *uuid.UUID
	UserID  *uuid.UUID
	Action  *AuditAction
	From    *time.Time
	To      *time.Time
}

// NewAuditEntry builds an entry stamped with the current time.
func NewAuditEntry(actorID uuid.UUID, action AuditAction, userID uuid.UUID, detail string) *AuditEntry {
	entry := &AuditEntry{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if detail != "" {
		entry.Detail = &detail
	}
	return entry
}
