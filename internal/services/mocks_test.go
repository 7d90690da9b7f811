package services

import (
	"context"
	"io"
	"time"

	"mandirdaan/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*models.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetTenantSummary(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DonationSummary), args.Error(1)
}

func (m *MockCacheService) SetTenantSummary(ctx context.Context, tenantID uuid.UUID, summary *models.DonationSummary, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, summary, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetTypeBreakdown(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TypeBreakdown), args.Error(1)
}

func (m *MockCacheService) SetTypeBreakdown(ctx context.Context, tenantID uuid.UUID, breakdown []models.TypeBreakdown, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, breakdown, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) ResetRateLimit(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, bucket, object string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, bucket, object, reader, size, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) PresignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, object, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) EnsureBucketExists(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}
