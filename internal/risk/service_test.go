package risk

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"estateguard/internal/domain"
	"estateguard/pkg/errors"
	"estateguard/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRiskScore(ctx context.Context, id uuid.UUID, score int) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

func (m *MockUserRepository) ListByRiskScore(ctx context.Context, minScore, limit, offset int) ([]*domain.User, error) {
	args := m.Called(ctx, minScore, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

type MockAMLRepository struct {
	mock.Mock
}

func (m *MockAMLRepository) CountSuspiciousByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SumCompletedByUserID(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockProfileCache struct {
	mock.Mock
}

func (m *MockProfileCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockProfileCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockProfileCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// memoryProfileCache is a map-backed stand-in for the redis cache, used
// where a test needs real hit/miss behavior across calls.
type memoryProfileCache struct {
	values map[string][]byte
}

func newMemoryProfileCache() *memoryProfileCache {
	return &memoryProfileCache{values: make(map[string][]byte)}
}

func (c *memoryProfileCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return errors.New("cache: miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryProfileCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memoryProfileCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func newTestService(users *MockUserRepository, aml *MockAMLRepository, txs *MockTransactionRepository, audit *MockAuditRepository) *Service {
	return NewService(users, aml, txs, audit, nil, NewThresholds(100000, 50000), logger.NewNop())
}

// --- Tests ---

func TestComputeApprovedLowVolume(t *testing.T) {
	service := newTestService(nil, nil, nil, nil)

	b := service.Compute(domain.KYCStatusApproved, 0, decimal.NewFromInt(45000))

	assert.Equal(t, 0, b.KYCComponent)
	assert.Equal(t, 0, b.AMLComponent)
	assert.Equal(t, 0, b.VolumeComponent)
	assert.Equal(t, 0, b.Score)
}

func TestComputeRejectedSuspiciousHighVolume(t *testing.T) {
	service := newTestService(nil, nil, nil, nil)

	b := service.Compute(domain.KYCStatusRejected, 2, decimal.NewFromInt(120000))

	assert.Equal(t, 30, b.KYCComponent)
	assert.Equal(t, 40, b.AMLComponent)
	assert.Equal(t, 20, b.VolumeComponent)
	assert.Equal(t, 90, b.Score)
}

func TestComputePendingMidVolume(t *testing.T) {
	service := newTestService(nil, nil, nil, nil)

	b := service.Compute(domain.KYCStatusPending, 3, decimal.NewFromInt(60000))

	assert.Equal(t, 10, b.KYCComponent)
	assert.Equal(t, 60, b.AMLComponent)
	assert.Equal(t, 10, b.VolumeComponent)
	assert.Equal(t, 80, b.Score)
}

func TestComputePendingSuspiciousZeroVolume(t *testing.T) {
	service := newTestService(nil, nil, nil, nil)

	b := service.Compute(domain.KYCStatusPending, 3, decimal.Zero)

	assert.Equal(t, 10, b.KYCComponent)
	assert.Equal(t, 60, b.AMLComponent)
	assert.Equal(t, 0, b.VolumeComponent)
	assert.Equal(t, 70, b.Score)
}

func TestComputeVolumeBoundariesAreExclusive(t *testing.T) {
	service := newTestService(nil, nil, nil, nil)

	// Exactly at a boundary stays in the lower tier.
	assert.Equal(t, 0, service.Compute(domain.KYCStatusApproved, 0, decimal.NewFromInt(50000)).VolumeComponent)
	assert.Equal(t, 10, service.Compute(domain.KYCStatusApproved, 0, decimal.NewFromInt(50001)).VolumeComponent)
	assert.Equal(t, 10, service.Compute(domain.KYCStatusApproved, 0, decimal.NewFromInt(100000)).VolumeComponent)
	assert.Equal(t, 20, service.Compute(domain.KYCStatusApproved, 0, decimal.NewFromInt(100001)).VolumeComponent)
}

func TestComputeScoreIsUnbounded(t *testing.T) {
	service := newTestService(nil, nil, nil, nil)

	b := service.Compute(domain.KYCStatusRejected, 10, decimal.NewFromInt(500000))

	assert.Equal(t, 250, b.Score)
	assert.Equal(t, domain.RiskLevelCritical, domain.RiskLevelFor(b.Score))
}

func TestRecomputePersistsAndAudits(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockAML := new(MockAMLRepository)
	mockTxs := new(MockTransactionRepository)
	mockAudit := new(MockAuditRepository)
	service := newTestService(mockUsers, mockAML, mockTxs, mockAudit)
	ctx := context.Background()

	userID := uuid.New()
	actorID := uuid.New()

	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID, KYCStatus: domain.KYCStatusRejected}, nil)
	mockAML.On("CountSuspiciousByUserID", ctx, userID).Return(2, nil)
	mockTxs.On("SumCompletedByUserID", ctx, userID).Return(decimal.NewFromInt(120000), nil)
	mockUsers.On("UpdateRiskScore", ctx, userID, 90).Return(nil)
	mockAudit.On("Create", ctx, mock.AnythingOfType("*domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(*domain.AuditEntry)
			assert.Equal(t, domain.AuditActionRiskRecomputed, entry.Action)
			assert.Equal(t, actorID, entry.ActorID)
			assert.Equal(t, userID, entry.UserID)
		}).Return(nil)

	breakdown, err := service.Recompute(ctx, actorID, userID)

	assert.NoError(t, err)
	assert.Equal(t, 90, breakdown.Score)
	mockUsers.AssertExpectations(t)
	mockAML.AssertExpectations(t)
	mockTxs.AssertExpectations(t)
	mockAudit.AssertExpectations(t)
}

func TestRecomputeUnknownUserWritesNothing(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockAML := new(MockAMLRepository)
	mockTxs := new(MockTransactionRepository)
	mockAudit := new(MockAuditRepository)
	service := newTestService(mockUsers, mockAML, mockTxs, mockAudit)
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(nil, errors.ErrUserNotFound)

	_, err := service.Recompute(ctx, uuid.New(), userID)

	assert.ErrorIs(t, err, errors.ErrUserNotFound)
	mockUsers.AssertNotCalled(t, "UpdateRiskScore", mock.Anything, mock.Anything, mock.Anything)
	mockAudit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetProfile(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newTestService(mockUsers, new(MockAMLRepository), new(MockTransactionRepository), new(MockAuditRepository))
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{
		ID:        userID,
		Email:     "investor@example.com",
		KYCStatus: domain.KYCStatusApproved,
		RiskScore: 70,
	}, nil)

	profile, err := service.GetProfile(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, 70, profile.RiskScore)
	assert.Equal(t, domain.RiskLevelHigh, profile.RiskLevel)
}

func TestGetProfileCachesOnMiss(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockCache := new(MockProfileCache)
	service := NewService(mockUsers, new(MockAMLRepository), new(MockTransactionRepository), new(MockAuditRepository), mockCache, NewThresholds(100000, 50000), logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	key := "risk:profile:" + userID.String()

	mockCache.On("Get", ctx, key, mock.Anything).Return(errors.New("cache: miss"))
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID, RiskScore: 20}, nil)
	mockCache.On("Set", ctx, key, mock.AnythingOfType("*domain.RiskProfile"), 5*time.Minute).Return(nil)

	profile, err := service.GetProfile(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, domain.RiskLevelLow, profile.RiskLevel)
	mockCache.AssertExpectations(t)
}

func TestRecomputeInvalidatesCachedProfile(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockAML := new(MockAMLRepository)
	mockTxs := new(MockTransactionRepository)
	mockAudit := new(MockAuditRepository)
	mockCache := new(MockProfileCache)
	service := NewService(mockUsers, mockAML, mockTxs, mockAudit, mockCache, NewThresholds(100000, 50000), logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID, KYCStatus: domain.KYCStatusApproved}, nil)
	mockAML.On("CountSuspiciousByUserID", ctx, userID).Return(0, nil)
	mockTxs.On("SumCompletedByUserID", ctx, userID).Return(decimal.Zero, nil)
	mockUsers.On("UpdateRiskScore", ctx, userID, 0).Return(nil)
	mockAudit.On("Create", ctx, mock.Anything).Return(nil)
	mockCache.On("Delete", ctx, "risk:profile:"+userID.String()).Return(nil)

	_, err := service.Recompute(ctx, uuid.New(), userID)

	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestProfileReadsSeeFreezeAfterInvalidate(t *testing.T) {
	mockUsers := new(MockUserRepository)
	cache := newMemoryProfileCache()
	service := NewService(mockUsers, new(MockAMLRepository), new(MockTransactionRepository), new(MockAuditRepository), cache, NewThresholds(100000, 50000), logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID, IsFrozen: false}, nil).Once()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID, IsFrozen: true}, nil).Once()

	before, err := service.GetProfile(ctx, userID)
	assert.NoError(t, err)
	assert.False(t, before.IsFrozen)

	// The stored row changed underneath the cache; without invalidation the
	// next read would keep reporting the account as active.
	service.InvalidateProfile(ctx, userID)

	after, err := service.GetProfile(ctx, userID)
	assert.NoError(t, err)
	assert.True(t, after.IsFrozen)
	mockUsers.AssertExpectations(t)
}

func TestListProfilesOrderedByScore(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newTestService(mockUsers, new(MockAMLRepository), new(MockTransactionRepository), new(MockAuditRepository))
	ctx := context.Background()

	mockUsers.On("ListByRiskScore", ctx, 60, 20, 0).Return([]*domain.User{
		{ID: uuid.New(), RiskScore: 110},
		{ID: uuid.New(), RiskScore: 65},
	}, nil)

	profiles, err := service.ListProfiles(ctx, 60, 20, 0)

	assert.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, domain.RiskLevelCritical, profiles[0].RiskLevel)
	assert.Equal(t, domain.RiskLevelHigh, profiles[1].RiskLevel)
}
