package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus mirrors the states used by the transaction-processing
// subsystem that owns this table.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is a read-only view of an investment transaction. The
// compliance service only aggregates over it; ownership lies with the
// transaction-processing subsystem.
type Transaction struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	UserID    uuid.UUID         `json:"user_id" db:"user_id"`
	Amount    decimal.Decimal   `json:"amount" db:"amount"`
	Status    TransactionStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}
