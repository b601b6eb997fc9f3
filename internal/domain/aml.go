package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AMLRecord is the stored verdict for one evaluated transaction. Records are
// immutable once created: IsSuspicious reflects the thresholds in force at
// evaluation time, not the current configuration.
type AMLRecord struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Frequency     int             `json:"frequency" db:"frequency"`
	IsSuspicious  bool            `json:"is_suspicious" db:"is_suspicious"`
	FlaggedReason *string         `json:"flagged_reason,omitempty" db:"flagged_reason"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
