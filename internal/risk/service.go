// Package risk computes and stores per-user risk scores.
package risk

import (
	"context"
	"fmt"
	"time"

	"estateguard/internal/domain"
	"estateguard/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Score weights. The score is additive and has no upper bound: every
// suspicious record keeps pushing it up.
const (
	kycRejectedPoints   = 30
	kycUnverifiedPoints = 10
	suspiciousPoints    = 20
	highVolumePoints    = 20
	mediumVolumePoints  = 10
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateRiskScore(ctx context.Context, id uuid.UUID, score int) error
	ListByRiskScore(ctx context.Context, minScore, limit, offset int) ([]*domain.User, error)
}

type AMLRepository interface {
	CountSuspiciousByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}

type TransactionRepository interface {
	SumCompletedByUserID(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// ProfileCache holds recently served risk profiles. A nil cache disables
// caching.
type ProfileCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Thresholds are the volume tier boundaries, compared strictly.
type Thresholds struct {
	HighVolume   decimal.Decimal
	MediumVolume decimal.Decimal
}

// NewThresholds builds tier boundaries from the configured amounts.
func NewThresholds(highVolume, mediumVolume int64) Thresholds {
	return Thresholds{
		HighVolume:   decimal.NewFromInt(highVolume),
		MediumVolume: decimal.NewFromInt(mediumVolume),
	}
}

type Service struct {
	users      UserRepository
	aml        AMLRepository
	txs        TransactionRepository
	audit      AuditRepository
	cache      ProfileCache
	thresholds Thresholds
	logger     logger.Logger
}

func NewService(users UserRepository, aml AMLRepository, txs TransactionRepository, audit AuditRepository, cache ProfileCache, thresholds Thresholds, logger logger.Logger) *Service {
	return &Service{
		users:      users,
		aml:        aml,
		txs:        txs,
		audit:      audit,
		cache:      cache,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Breakdown shows how a score was assembled.
type Breakdown struct {
	KYCComponent    int             `json:"kyc_component"`
	AMLComponent    int             `json:"aml_component"`
	VolumeComponent int             `json:"volume_component"`
	SuspiciousCount int             `json:"suspicious_count"`
	TotalVolume     decimal.Decimal `json:"total_volume"`
	Score           int             `json:"score"`
}

// Compute assembles the score from the given inputs. Pure so the weighting
// can be tested without storage.
func (s *Service) Compute(status domain.KYCStatus, suspiciousCount int, volume decimal.Decimal) Breakdown {
	b := Breakdown{
		SuspiciousCount: suspiciousCount,
		TotalVolume:     volume,
	}

	switch status {
	case domain.KYCStatusApproved:
		b.KYCComponent = 0
	case domain.KYCStatusRejected:
		b.KYCComponent = kycRejectedPoints
	default:
		b.KYCComponent = kycUnverifiedPoints
	}

	b.AMLComponent = suspiciousPoints * suspiciousCount

	if volume.GreaterThan(s.thresholds.HighVolume) {
		b.VolumeComponent = highVolumePoints
	} else if volume.GreaterThan(s.thresholds.MediumVolume) {
		b.VolumeComponent = mediumVolumePoints
	}

	b.Score = b.KYCComponent + b.AMLComponent + b.VolumeComponent
	return b
}

// Recompute reads the user's current compliance state, derives the score and
// persists it. Nothing is written when the user does not exist.
func (s *Service) Recompute(ctx context.Context, actorID, userID uuid.UUID) (*Breakdown, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	suspicious, err := s.aml.CountSuspiciousByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	volume, err := s.txs.SumCompletedByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakdown := s.Compute(user.KYCStatus, suspicious, volume)

	if err := s.users.UpdateRiskScore(ctx, userID, breakdown.Score); err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("score=%d kyc=%d aml=%d volume=%d", breakdown.Score,
		breakdown.KYCComponent, breakdown.AMLComponent, breakdown.VolumeComponent)
	entry := domain.NewAuditEntry(actorID, domain.AuditActionRiskRecomputed, userID, detail)
	if err := s.audit.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.InvalidateProfile(ctx, userID)

	s.logger.Info("risk score recomputed", map[string]interface{}{
		"user_id": userID.String(),
		"score":   breakdown.Score,
		"level":   string(domain.RiskLevelFor(breakdown.Score)),
	})

	return &breakdown, nil
}

// InvalidateProfile drops the cached profile so the next read sees the
// stored row. Any durable change to a user's compliance state must call
// this; a cache failure is logged and does not fail the caller.
func (s *Service) InvalidateProfile(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, profileKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate cached profile", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}
}

// GetProfile returns the stored risk view of one user, served from cache
// when a fresh copy exists.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.RiskProfile, error) {
	key := profileKey(userID)
	if s.cache != nil {
		var cached domain.RiskProfile
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := profileOf(user)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, profile, profileCacheTTL); err != nil {
			s.logger.Warn("failed to cache profile", map[string]interface{}{
				"user_id": userID.String(),
				"error":   err.Error(),
			})
		}
	}
	return profile, nil
}

// ListProfiles returns stored profiles with score >= minScore, highest first.
func (s *Service) ListProfiles(ctx context.Context, minScore, limit, offset int) ([]*domain.RiskProfile, error) {
	users, err := s.users.ListByRiskScore(ctx, minScore, limit, offset)
	if err != nil {
		return nil, err
	}

	profiles := make([]*domain.RiskProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, profileOf(user))
	}
	return profiles, nil
}

const profileCacheTTL = 5 * time.Minute

func profileKey(userID uuid.UUID) string {
	return "risk:profile:" + userID.String()
}

func profileOf(user *domain.User) *domain.RiskProfile {
	return &domain.RiskProfile{
		UserID:    user.ID,
		Email:     user.Email,
		KYCStatus: user.KYCStatus,
		RiskScore: user.RiskScore,
		RiskLevel: domain.RiskLevelFor(user.RiskScore),
		IsFrozen:  user.IsFrozen,
	}
}
