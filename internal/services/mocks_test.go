package services

import (
	"context"
	"io"
	"time"

	"homestock/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Shared mocks for the service suites. The suites in this package overlap on
// most dependencies, so the mocks live here instead of per test file.

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) Create(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) GetManyByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*models.Location, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).([]*models.Location), args.Error(1)
}

func (m *MockLocationRepository) GetChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*models.Location, error) {
	args := m.Called(ctx, ownerID, parentID)
	return args.Get(0).([]*models.Location), args.Error(1)
}

func (m *MockLocationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Location, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*models.Location), args.Error(1)
}

func (m *MockLocationRepository) DescendantIDs(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockLocationRepository) UpdateBatch(ctx context.Context, locations []*models.Location) error {
	args := m.Called(ctx, locations)
	return args.Error(0)
}

func (m *MockLocationRepository) CountUsage(ctx context.Context, ownerID, id uuid.UUID) (*models.LocationUsage, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationUsage), args.Error(1)
}

func (m *MockLocationRepository) DeleteSubtree(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	args := m.Called(ctx, ownerID, ids)
	return args.Error(0)
}

func (m *MockLocationRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockLocationRepository) OwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) UpdateLocation(ctx context.Context, ownerID, id, locationID uuid.UUID) error {
	args := m.Called(ctx, ownerID, id, locationID)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockItemRepository) ListByLocation(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID, locationID, limit, offset)
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) Search(ctx context.Context, ownerID uuid.UUID, filter *models.ItemSearchFilter) (*models.ItemSearchResult, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemSearchResult), args.Error(1)
}

func (m *MockItemRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockItemRepository) RootBreakdown(ctx context.Context, ownerID uuid.UUID) ([]*models.RootBreakdown, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*models.RootBreakdown), args.Error(1)
}

func (m *MockItemRepository) RecentlyUpdated(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID, limit)
	return args.Get(0).([]*models.Item), args.Error(1)
}

type MockItemPhotoRepository struct {
	mock.Mock
}

func (m *MockItemPhotoRepository) Create(ctx context.Context, photo *models.ItemPhoto) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockItemPhotoRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.ItemPhoto, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemPhoto), args.Error(1)
}

func (m *MockItemPhotoRepository) ListByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]*models.ItemPhoto, error) {
	args := m.Called(ctx, ownerID, itemID)
	return args.Get(0).([]*models.ItemPhoto), args.Error(1)
}

func (m *MockItemPhotoRepository) ListKeysByLocationIDs(ctx context.Context, ownerID uuid.UUID, locationIDs []uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ownerID, locationIDs)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemPhotoRepository) ListKeysByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ownerID, itemID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemPhotoRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Activity, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]*models.Activity), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetLocation(ctx context.Context, ownerID, locationID uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, ownerID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockCacheService) SetLocation(ctx context.Context, ownerID uuid.UUID, location *models.Location, ttl time.Duration) error {
	args := m.Called(ctx, ownerID, location, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteLocation(ctx context.Context, ownerID, locationID uuid.UUID) error {
	args := m.Called(ctx, ownerID, locationID)
	return args.Error(0)
}

func (m *MockCacheService) GetTree(ctx context.Context, ownerID uuid.UUID) ([]*models.TreeNode, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TreeNode), args.Error(1)
}

func (m *MockCacheService) SetTree(ctx context.Context, ownerID uuid.UUID, nodes []*models.TreeNode, ttl time.Duration) error {
	args := m.Called(ctx, ownerID, nodes, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, ownerID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCacheService) SetItem(ctx context.Context, ownerID uuid.UUID, item *models.Item, ttl time.Duration) error {
	args := m.Called(ctx, ownerID, item, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error {
	args := m.Called(ctx, ownerID, itemID)
	return args.Error(0)
}

func (m *MockCacheService) GetOwnerStats(ctx context.Context, ownerID uuid.UUID) (*models.OwnerStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnerStats), args.Error(1)
}

func (m *MockCacheService) SetOwnerStats(ctx context.Context, ownerID uuid.UUID, stats *models.OwnerStats, ttl time.Duration) error {
	args := m.Called(ctx, ownerID, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateOwnerCache(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadImage(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteImage(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}
