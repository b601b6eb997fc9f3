// Package account manages the frozen state of investor accounts.
package account

import (
	"context"

	"estateguard/internal/domain"
	"estateguard/pkg/logger"

	"github.com/google/uuid"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetFrozen(ctx context.Context, id uuid.UUID, frozen bool, entry *domain.AuditEntry) (bool, error)
}

// ProfileInvalidator drops cached risk profile reads for a user after the
// user's stored state changes. A nil invalidator disables the hook.
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, userID uuid.UUID)
}

// Service freezes and unfreezes accounts. Both operations are manual and
// idempotent: a repeated request succeeds without a second audit entry, and
// no risk score ever triggers a freeze on its own.
type Service struct {
	users    UserRepository
	profiles ProfileInvalidator
	logger   logger.Logger
}

func NewService(users UserRepository, profiles ProfileInvalidator, logger logger.Logger) *Service {
	return &Service{users: users, profiles: profiles, logger: logger}
}

// Freeze puts the account into the frozen state.
func (s *Service) Freeze(ctx context.Context, actorID, userID uuid.UUID, reason string) (*domain.User, error) {
	return s.setFrozen(ctx, actorID, userID, true, reason)
}

// Unfreeze returns the account to the active state.
func (s *Service) Unfreeze(ctx context.Context, actorID, userID uuid.UUID, reason string) (*domain.User, error) {
	return s.setFrozen(ctx, actorID, userID, false, reason)
}

func (s *Service) setFrozen(ctx context.Context, actorID, userID uuid.UUID, frozen bool, reason string) (*domain.User, error) {
	action := domain.AuditActionAccountFrozen
	if !frozen {
		action = domain.AuditActionAccountUnfrozen
	}
	entry := domain.NewAuditEntry(actorID, action, userID, reason)

	changed, err := s.users.SetFrozen(ctx, userID, frozen, entry)
	if err != nil {
		return nil, err
	}

	if changed {
		if s.profiles != nil {
			s.profiles.InvalidateProfile(ctx, userID)
		}
		s.logger.Info("account state changed", map[string]interface{}{
			"user_id":  userID.String(),
			"actor_id": actorID.String(),
			"frozen":   frozen,
		})
	}

	return s.users.FindByID(ctx, userID)
}
