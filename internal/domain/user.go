// Package domain holds the core compliance entities shared across services.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an investor account as seen by the compliance back-office. The
// kyc_status column is a cached projection of the decision log: it always
// equals the action of the most recent KYC decision, or PENDING when no
// decision exists. RiskScore is written only by the risk scorer and IsFrozen
// only by the account state manager.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	KYCStatus KYCStatus `json:"kyc_status" db:"kyc_status"`
	RiskScore int       `json:"risk_score" db:"risk_score"`
	IsFrozen  bool      `json:"is_frozen" db:"is_frozen"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name used in review queues.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
