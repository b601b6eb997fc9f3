package postgres

import (
	"context"
	"fmt"

	"estateguard/internal/domain"

	"github.com/jmoiron/sqlx"
)

// AuditRepository implements the append-only compliance audit log. There are
// no update or delete operations on purpose.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends a new audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	return insertAuditEntry(ctx, r.db, entry)
}

// List returns matching entries, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter, limit, offset int) ([]*domain.AuditEntry, error) {
	entries := []*domain.AuditEntry{}

	where, args := buildAuditWhere(filter)
	query := fmt.Sprintf(`
		SELECT id, actor_id, action, user_id, detail, created_at
		FROM compliance_schema.audit_log
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, storageErr(err, "failed to list audit entries")
	}
	return entries, nil
}

// Count returns the number of matching entries.
func (r *AuditRepository) Count(ctx context.Context, filter domain.AuditFilter) (int, error) {
	var count int

	where, args := buildAuditWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM compliance_schema.audit_log %s`, where)

	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, storageErr(err, "failed to count audit entries")
	}
	return count, nil
}

func buildAuditWhere(filter domain.AuditFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.ActorID != nil {
		add("actor_id = $%d", *filter.ActorID)
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Action != nil {
		add("action = $%d", *filter.Action)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	if len(clauses) == 0 {
		return "", args
	}
	where := "WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

// insertAuditEntry writes one entry using the given executor so callers can
// append inside their own transaction.
func insertAuditEntry(ctx context.Context, ext sqlx.ExtContext, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO compliance_schema.audit_log (
			id, actor_id, action, user_id, detail, created_at
		) VALUES (
			:id, :actor_id, :action, :user_id, :detail, :created_at
		)
	`

	_, err := sqlx.NamedExecContext(ctx, ext, query, entry)
	if err != nil {
		return storageErr(err, "failed to create audit entry")
	}
	return nil
}
