package aml

import (
	"context"
	"time"

	"estateguard/internal/domain"
	"estateguard/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type RecordRepository interface {
	Create(ctx context.Context, record *domain.AMLRecord, entry *domain.AuditEntry) error
	FindByUserID(ctx context.Context, userID uuid.UUID, suspiciousOnly bool, limit, offset int) ([]*domain.AMLRecord, error)
	CountSuspiciousByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}

type Service struct {
	users   UserRepository
	records RecordRepository
	rule    *Rule
	logger  logger.Logger
}

func NewService(users UserRepository, records RecordRepository, rule *Rule, logger logger.Logger) *Service {
	return &Service{
		users:   users,
		records: records,
		rule:    rule,
		logger:  logger,
	}
}

type EvaluateRequest struct {
	ActorID       uuid.UUID
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	Frequency     int
}

// Evaluate runs the rule against one transaction and stores the verdict.
// Suspicious verdicts also land in the audit log, committed together with
// the record.
func (s *Service) Evaluate(ctx context.Context, req *EvaluateRequest) (*domain.AMLRecord, error) {
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	verdict, err := s.rule.Evaluate(req.Amount, req.Frequency)
	if err != nil {
		return nil, err
	}

	record := &domain.AMLRecord{
		ID:            uuid.New(),
		UserID:        req.UserID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Frequency:     req.Frequency,
		IsSuspicious:  verdict.Suspicious,
		CreatedAt:     time.Now().UTC(),
	}

	var entry *domain.AuditEntry
	if verdict.Suspicious {
		reason := verdict.Reason
		record.FlaggedReason = &reason
		entry = domain.NewAuditEntry(req.ActorID, domain.AuditActionAMLFlag, req.UserID, reason)
	}

	if err := s.records.Create(ctx, record, entry); err != nil {
		return nil, err
	}

	if verdict.Suspicious {
		s.logger.Warn("transaction flagged as suspicious", map[string]interface{}{
			"user_id":        req.UserID.String(),
			"transaction_id": req.TransactionID.String(),
			"reason":         verdict.Reason,
		})
	}

	return record, nil
}

// ListRecords returns a user's evaluation history.
func (s *Service) ListRecords(ctx context.Context, userID uuid.UUID, suspiciousOnly bool, limit, offset int) ([]*domain.AMLRecord, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.records.FindByUserID(ctx, userID, suspiciousOnly, limit, offset)
}

// SuspiciousCount returns how many of the user's records are flagged.
func (s *Service) SuspiciousCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return 0, err
	}
	return s.records.CountSuspiciousByUserID(ctx, userID)
}
