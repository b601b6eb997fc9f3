package postgres

import (
	"context"
	"database/sql"
	"time"

	"estateguard/internal/domain"
	"estateguard/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserRepository implements investor account persistence.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO compliance_schema.users (
			id, email, first_name, last_name, kyc_status,
			risk_score, is_frozen, created_at, updated_at
		) VALUES (
			:id, :email, :first_name, :last_name, :kyc_status,
			:risk_score, :is_frozen, :created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrUserAlreadyExists
		}
		return storageErr(err, "failed to create user")
	}

	return nil
}

// FindByID returns the user with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, email, first_name, last_name, kyc_status,
			risk_score, is_frozen, created_at, updated_at
		FROM compliance_schema.users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, storageErr(err, "failed to find user")
	}

	return &user, nil
}

// FindByKYCStatus returns users filtered by status, newest first. A nil
// status returns all users.
func (r *UserRepository) FindByKYCStatus(ctx context.Context, status *domain.KYCStatus, limit, offset int) ([]*domain.User, error) {
	users := []*domain.User{}

	if status == nil {
		query := `
			SELECT id, email, first_name, last_name, kyc_status,
				risk_score, is_frozen, created_at, updated_at
			FROM compliance_schema.users
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`
		if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
			return nil, storageErr(err, "failed to list users")
		}
		return users, nil
	}

	query := `
		SELECT id, email, first_name, last_name, kyc_status,
			risk_score, is_frozen, created_at, updated_at
		FROM compliance_schema.users
		WHERE kyc_status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &users, query, *status, limit, offset); err != nil {
		return nil, storageErr(err, "failed to list users by status")
	}
	return users, nil
}

// CountByKYCStatus counts users, optionally filtered by status.
func (r *UserRepository) CountByKYCStatus(ctx context.Context, status *domain.KYCStatus) (int, error) {
	var count int

	if status == nil {
		if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM compliance_schema.users`); err != nil {
			return 0, storageErr(err, "failed to count users")
		}
		return count, nil
	}

	query := `SELECT COUNT(*) FROM compliance_schema.users WHERE kyc_status = $1`
	if err := r.db.GetContext(ctx, &count, query, *status); err != nil {
		return 0, storageErr(err, "failed to count users by status")
	}
	return count, nil
}

// UpdateRiskScore overwrites the stored score for the user.
func (r *UserRepository) UpdateRiskScore(ctx context.Context, id uuid.UUID, score int) error {
	query := `
		UPDATE compliance_schema.users
		SET risk_score = $2, updated_at = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, score, time.Now().UTC())
	if err != nil {
		return storageErr(err, "failed to update risk score")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

// ListByRiskScore returns users with risk_score >= minScore, highest first.
func (r *UserRepository) ListByRiskScore(ctx context.Context, minScore, limit, offset int) ([]*domain.User, error) {
	users := []*domain.User{}
	query := `
		SELECT id, email, first_name, last_name, kyc_status,
			risk_score, is_frozen, created_at, updated_at
		FROM compliance_schema.users
		WHERE risk_score >= $1
		ORDER BY risk_score DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &users, query, minScore, limit, offset); err != nil {
		return nil, storageErr(err, "failed to list users by risk score")
	}
	return users, nil
}

// SetFrozen flips the frozen flag and writes the audit entry in one
// transaction. It returns false without touching the audit log when the
// account was already in the requested state.
func (r *UserRepository) SetFrozen(ctx context.Context, id uuid.UUID, frozen bool, entry *domain.AuditEntry) (bool, error) {
	changed := false

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE compliance_schema.users
			SET is_frozen = $2, updated_at = $3
			WHERE id = $1 AND is_frozen <> $2`,
			id, frozen, time.Now().UTC())
		if err != nil {
			return storageErr(err, "failed to update frozen state")
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return storageErr(err, "failed to check update result")
		}
		if rows == 0 {
			// Either the user is missing or the state already matches.
			var exists bool
			if err := tx.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM compliance_schema.users WHERE id = $1)`, id); err != nil {
				return storageErr(err, "failed to check user existence")
			}
			if !exists {
				return errors.ErrUserNotFound
			}
			return nil
		}

		changed = true
		return insertAuditEntry(ctx, tx, entry)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
