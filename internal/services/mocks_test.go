package services

import (
	"context"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) CreateWithOwner(ctx context.Context, restaurant *models.Restaurant, owner *models.User) error {
	return m.Called(ctx, restaurant, owner).Error(0)
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	return m.Called(ctx, restaurant).Error(0)
}

func (m *MockRestaurantRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, restaurantID, id)
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

func (m *MockUserRepository) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return m.Called(ctx, restaurantID, id).Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]*models.Category), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) error {
	return m.Called(ctx, restaurantID, id, available).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return m.Called(ctx, restaurantID, id).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, restaurantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error) {
	args := m.Called(ctx, restaurantID, filter)
	return args.Get(0).([]*models.Product), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetMenu(ctx context.Context, restaurantID uuid.UUID) (*models.Menu, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Menu), args.Error(1)
}

func (m *MockCacheService) SetMenu(ctx context.Context, restaurantID uuid.UUID, menu *models.Menu, ttl time.Duration) error {
	return m.Called(ctx, restaurantID, menu, ttl).Error(0)
}

func (m *MockCacheService) InvalidateMenu(ctx context.Context, restaurantID uuid.UUID) error {
	return m.Called(ctx, restaurantID).Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	return m.Called(ctx, bucket, object, data, contentType).Error(0)
}

func (m *MockObjectStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	args := m.Called(ctx, bucket, object)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) PresignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, object, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) EnsureBucket(ctx context.Context, bucket string) error {
	return m.Called(ctx, bucket).Error(0)
}

func intPtr(v int) *int { return &v }
