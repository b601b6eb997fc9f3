package postgres

import (
	"context"

	"estateguard/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// TransactionRepository reads the investment transaction ledger. The table is
// owned by the transaction-processing subsystem; this side only aggregates
// and seeds test data.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction. Used by seeding only.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO compliance_schema.transactions (
			id, user_id, amount, status, created_at
		) VALUES (
			:id, :user_id, :amount, :status, :created_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, tx)
	if err != nil {
		return storageErr(err, "failed to create transaction")
	}
	return nil
}

// SumCompletedByUserID returns the user's total completed volume.
func (r *TransactionRepository) SumCompletedByUserID(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM compliance_schema.transactions
		WHERE user_id = $1 AND status = $2`

	err := r.db.GetContext(ctx, &total, query, userID, domain.TransactionStatusCompleted)
	if err != nil {
		return decimal.Zero, storageErr(err, "failed to sum transaction volume")
	}
	return total, nil
}

// FindByUserID returns the user's transactions, newest first.
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	txs := []*domain.Transaction{}
	query := `
		SELECT id, user_id, amount, status, created_at
		FROM compliance_schema.transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &txs, query, userID, limit, offset); err != nil {
		return nil, storageErr(err, "failed to find transactions")
	}
	return txs, nil
}
