package aml

import (
	"context"
	"testing"

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

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, record *domain.AMLRecord, entry *domain.AuditEntry) error {
	args := m.Called(ctx, record, entry)
	return args.Error(0)
}

func (m *MockRecordRepository) FindByUserID(ctx context.Context, userID uuid.UUID, suspiciousOnly bool, limit, offset int) ([]*domain.AMLRecord, error) {
	args := m.Called(ctx, userID, suspiciousOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AMLRecord), args.Error(1)
}

func (m *MockRecordRepository) CountSuspiciousByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func newTestService(users *MockUserRepository, records *MockRecordRepository) *Service {
	return NewService(users, records, NewRule(50000, 10), logger.NewNop())
}

// --- Tests ---

func TestEvaluateStoresCleanRecordWithoutAudit(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockRecords := new(MockRecordRepository)
	service := newTestService(mockUsers, mockRecords)
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID}, nil)
	mockRecords.On("Create", ctx, mock.AnythingOfType("*domain.AMLRecord"), (*domain.AuditEntry)(nil)).Return(nil)

	record, err := service.Evaluate(ctx, &EvaluateRequest{
		ActorID:       uuid.New(),
		UserID:        userID,
		TransactionID: uuid.New(),
		Amount:        decimal.NewFromInt(900),
		Frequency:     2,
	})

	assert.NoError(t, err)
	assert.False(t, record.IsSuspicious)
	assert.Nil(t, record.FlaggedReason)
	mockRecords.AssertExpectations(t)
}

func TestEvaluateFlagsLargeAmount(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockRecords := new(MockRecordRepository)
	service := newTestService(mockUsers, mockRecords)
	ctx := context.Background()

	userID := uuid.New()
	actorID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID}, nil)

	mockRecords.On("Create", ctx, mock.AnythingOfType("*domain.AMLRecord"), mock.AnythingOfType("*domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			entry := args.Get(2).(*domain.AuditEntry)
			assert.Equal(t, domain.AuditActionAMLFlag, entry.Action)
			assert.Equal(t, actorID, entry.ActorID)
			assert.Equal(t, userID, entry.UserID)
		}).Return(nil)

	record, err := service.Evaluate(ctx, &EvaluateRequest{
		ActorID:       actorID,
		UserID:        userID,
		TransactionID: uuid.New(),
		Amount:        decimal.NewFromInt(60000),
		Frequency:     1,
	})

	assert.NoError(t, err)
	assert.True(t, record.IsSuspicious)
	assert.NotNil(t, record.FlaggedReason)
	assert.Equal(t, "Amount exceeds threshold of 50000", *record.FlaggedReason)
	mockRecords.AssertExpectations(t)
}

func TestEvaluateUnknownUser(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockRecords := new(MockRecordRepository)
	service := newTestService(mockUsers, mockRecords)
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(nil, errors.ErrUserNotFound)

	_, err := service.Evaluate(ctx, &EvaluateRequest{
		ActorID:       uuid.New(),
		UserID:        userID,
		TransactionID: uuid.New(),
		Amount:        decimal.NewFromInt(100),
	})

	assert.ErrorIs(t, err, errors.ErrUserNotFound)
	mockRecords.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateNegativeAmountWritesNothing(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockRecords := new(MockRecordRepository)
	service := newTestService(mockUsers, mockRecords)
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID}, nil)

	_, err := service.Evaluate(ctx, &EvaluateRequest{
		ActorID:       uuid.New(),
		UserID:        userID,
		TransactionID: uuid.New(),
		Amount:        decimal.NewFromInt(-5),
	})

	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	mockRecords.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestListRecords(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockRecords := new(MockRecordRepository)
	service := newTestService(mockUsers, mockRecords)
	ctx := context.Background()

	userID := uuid.New()
	mockUsers.On("FindByID", ctx, userID).Return(&domain.User{ID: userID}, nil)

	expected := []*domain.AMLRecord{{ID: uuid.New(), UserID: userID, IsSuspicious: true}}
	mockRecords.On("FindByUserID", ctx, userID, true, 20, 0).Return(expected, nil)

	records, err := service.ListRecords(ctx, userID, true, 20, 0)

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	mockRecords.AssertExpectations(t)
}
