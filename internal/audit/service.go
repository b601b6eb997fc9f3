// Package audit exposes the compliance audit trail.
package audit

import (
	"context"
	"time"

	"estateguard/internal/domain"
	"estateguard/pkg/errors"

	"github.com/google/uuid"
)

// Repository is read-only here: entries are written by the kyc, aml,
// risk and account flows inside their own transactions.
type Repository interface {
	List(ctx context.Context, filter domain.AuditFilter, limit, offset int) ([]*domain.AuditEntry, error)
	Count(ctx context.Context, filter domain.AuditFilter) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListParams narrows List results. Unset fields match everything.
type ListParams struct {
	ActorID *uuid.UUID
	UserID  *uuid.UUID
	Action  string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// List returns matching entries newest first, with the total match count.
func (s *Service) List(ctx context.Context, params ListParams) ([]*domain.AuditEntry, int, error) {
	filter := domain.AuditFilter{
		ActorID: params.ActorID,
		UserID:  params.UserID,
		From:    params.From,
		To:      params.To,
	}
	if params.Action != "" {
		action, ok := domain.ParseAuditAction(params.Action)
		if !ok {
			return nil, 0, errors.ErrInvalidAuditAction
		}
		filter.Action = &action
	}

	entries, err := s.repo.List(ctx, filter, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
