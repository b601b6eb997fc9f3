package postgres

import (
	"context"
	"database/sql"

	"estateguard/internal/domain"
	"estateguard/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AMLRecordRepository implements AML evaluation record persistence.
type AMLRecordRepository struct {
	db *sqlx.DB
}

// NewAMLRecordRepository creates a new AMLRecordRepository.
func NewAMLRecordRepository(db *sqlx.DB) *AMLRecordRepository {
	return &AMLRecordRepository{db: db}
}

// Create inserts the record and, when entry is non-nil, the matching audit
// entry in the same transaction.
func (r *AMLRecordRepository) Create(ctx context.Context, record *domain.AMLRecord, entry *domain.AuditEntry) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO compliance_schema.aml_records (
				id, user_id, transaction_id, amount, frequency,
				is_suspicious, flagged_reason, created_at
			) VALUES (
				:id, :user_id, :transaction_id, :amount, :frequency,
				:is_suspicious, :flagged_reason, :created_at
			)`, record)
		if err != nil {
			return storageErr(err, "failed to create aml record")
		}

		if entry == nil {
			return nil
		}
		return insertAuditEntry(ctx, tx, entry)
	})
}

// FindByID returns a single record.
func (r *AMLRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AMLRecord, error) {
	var record domain.AMLRecord
	query := `
		SELECT id, user_id, transaction_id, amount, frequency,
			is_suspicious, flagged_reason, created_at
		FROM compliance_schema.aml_records WHERE id = $1`

	err := r.db.GetContext(ctx, &record, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrAMLRecordNotFound
	}
	if err != nil {
		return nil, storageErr(err, "failed to find aml record")
	}
	return &record, nil
}

// FindByUserID returns a user's records, newest first, optionally limited to
// suspicious ones.
func (r *AMLRecordRepository) FindByUserID(ctx context.Context, userID uuid.UUID, suspiciousOnly bool, limit, offset int) ([]*domain.AMLRecord, error) {
	records := []*domain.AMLRecord{}
	query := `
		SELECT id, user_id, transaction_id, amount, frequency,
			is_suspicious, flagged_reason, created_at
		FROM compliance_schema.aml_records
		WHERE user_id = $1`
	if suspiciousOnly {
		query += ` AND is_suspicious`
	}
	query += `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &records, query, userID, limit, offset); err != nil {
		return nil, storageErr(err, "failed to find aml records")
	}
	return records, nil
}

// CountSuspiciousByUserID counts the user's suspicious records.
func (r *AMLRecordRepository) CountSuspiciousByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM compliance_schema.aml_records
		WHERE user_id = $1 AND is_suspicious`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, storageErr(err, "failed to count suspicious records")
	}
	return count, nil
}
