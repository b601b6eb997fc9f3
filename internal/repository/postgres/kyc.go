package postgres

import (
	"context"
	"time"

	"estateguard/internal/domain"
	"estateguard/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// KYCDecisionRepository implements KYC decision persistence.
type KYCDecisionRepository struct {
	db *sqlx.DB
}

// NewKYCDecisionRepository creates a new KYCDecisionRepository.
func NewKYCDecisionRepository(db *sqlx.DB) *KYCDecisionRepository {
	return &KYCDecisionRepository{db: db}
}

// Record appends the decision, updates the user's cached status and writes
// the audit entry in a single transaction. The cached kyc_status column must
// never drift from the decision log, so these writes cannot be split.
func (r *KYCDecisionRepository) Record(ctx context.Context, decision *domain.KYCDecision, entry *domain.AuditEntry) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE compliance_schema.users
			SET kyc_status = $2, updated_at = $3
			WHERE id = $1`,
			decision.UserID, decision.Action.Status(), time.Now().UTC())
		if err != nil {
			return storageErr(err, "failed to update kyc status")
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return storageErr(err, "failed to check update result")
		}
		if rows == 0 {
			return errors.ErrUserNotFound
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO compliance_schema.kyc_decisions (
				id, user_id, admin_id, action, comment, created_at
			) VALUES (
				:id, :user_id, :admin_id, :action, :comment, :created_at
			)`, decision)
		if err != nil {
			return storageErr(err, "failed to create kyc decision")
		}

		return insertAuditEntry(ctx, tx, entry)
	})
}

// FindByUserID returns the user's decision history, newest first.
func (r *KYCDecisionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.KYCDecision, error) {
	decisions := []domain.KYCDecision{}
	query := `
		SELECT id, user_id, admin_id, action, comment, created_at
		FROM compliance_schema.kyc_decisions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &decisions, query, userID); err != nil {
		return nil, storageErr(err, "failed to find kyc decisions")
	}
	return decisions, nil
}
