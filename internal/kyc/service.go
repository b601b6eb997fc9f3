// Package kyc manages the review workflow for investor verification.
package kyc

import (
	"context"
	"fmt"
	"time"

	"estateguard/internal/domain"
	"estateguard/pkg/errors"
	"estateguard/pkg/logger"

	"github.com/google/uuid"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByKYCStatus(ctx context.Context, status *domain.KYCStatus, limit, offset int) ([]*domain.User, error)
	CountByKYCStatus(ctx context.Context, status *domain.KYCStatus) (int, error)
}

type DecisionRepository interface {
	Record(ctx context.Context, decision *domain.KYCDecision, entry *domain.AuditEntry) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.KYCDecision, error)
}

// ProfileInvalidator drops cached risk profile reads for a user after the
// user's verification status changes. A nil invalidator disables the hook.
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, userID uuid.UUID)
}

type Service struct {
	users     UserRepository
	decisions DecisionRepository
	profiles  ProfileInvalidator
	logger    logger.Logger
}

func NewService(users UserRepository, decisions DecisionRepository, profiles ProfileInvalidator, logger logger.Logger) *Service {
	return &Service{
		users:     users,
		decisions: decisions,
		profiles:  profiles,
		logger:    logger,
	}
}

// ListUsers returns users in the review queue. An unrecognized status filter
// is ignored and all users are returned.
func (s *Service) ListUsers(ctx context.Context, statusFilter string, limit, offset int) ([]*domain.User, int, error) {
	var status *domain.KYCStatus
	if statusFilter != "" {
		if parsed, ok := domain.ParseKYCStatus(statusFilter); ok {
			status = &parsed
		}
	}

	users, err := s.users.FindByKYCStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.CountByKYCStatus(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetStatus returns the user's cached verification status.
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID) (domain.KYCStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.KYCStatus, nil
}

// History returns the user's decision log, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.KYCDecision, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.decisions.FindByUserID(ctx, userID)
}

type ReviewRequest struct {
	UserID  uuid.UUID
	AdminID uuid.UUID
	Action  string
	Comment string
}

// Review records a reviewer decision. The decision, the cached status and
// the audit entry are committed together; an invalid action leaves every
// record untouched.
func (s *Service) Review(ctx context.Context, req *ReviewRequest) (*domain.KYCDecision, error) {
	action, ok := domain.ParseKYCAction(req.Action)
	if !ok {
		return nil, errors.ErrInvalidDecision
	}

	decision := &domain.KYCDecision{
		ID:        uuid.New(),
		UserID:    req.UserID,
		AdminID:   req.AdminID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if req.Comment != "" {
		decision.Comment = &req.Comment
	}

	detail := fmt.Sprintf("decision=%s", action)
	entry := domain.NewAuditEntry(req.AdminID, domain.AuditActionKYCDecision, req.UserID, detail)

	if err := s.decisions.Record(ctx, decision, entry); err != nil {
		return nil, err
	}

	if s.profiles != nil {
		s.profiles.InvalidateProfile(ctx, req.UserID)
	}

	s.logger.Info("kyc decision recorded", map[string]interface{}{
		"user_id":  req.UserID.String(),
		"admin_id": req.AdminID.String(),
		"action":   string(action),
	})

	return decision, nil
}
