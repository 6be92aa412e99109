package handlers

import (
	"context"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) GetPublic(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, restaurantID uuid.UUID, filter *models.OrderFilter) ([]*models.Order, error) {
	args := m.Called(ctx, restaurantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, restaurantID, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) DailySummary(ctx context.Context, restaurantID uuid.UUID, day time.Time) (*models.DailySummary, error) {
	args := m.Called(ctx, restaurantID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailySummary), args.Error(1)
}

func (m *MockOrderService) CancelStale(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) CreateCategory(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockMenuService) UpdateCategory(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockMenuService) DeleteCategory(ctx context.Context, restaurantID, id uuid.UUID) error {
	return m.Called(ctx, restaurantID, id).Error(0)
}

func (m *MockMenuService) ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockMenuService) CreateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockMenuService) GetProduct(ctx context.Context, restaurantID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockMenuService) UpdateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockMenuService) SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) error {
	return m.Called(ctx, restaurantID, id, available).Error(0)
}

func (m *MockMenuService) DeleteProduct(ctx context.Context, restaurantID, id uuid.UUID) error {
	return m.Called(ctx, restaurantID, id).Error(0)
}

func (m *MockMenuService) ListProducts(ctx context.Context, restaurantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error) {
	args := m.Called(ctx, restaurantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockMenuService) PublicMenu(ctx context.Context, restaurantID uuid.UUID) (*models.Menu, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Menu), args.Error(1)
}

func (m *MockMenuService) InvalidateMenu(ctx context.Context, restaurantID uuid.UUID) {
	m.Called(ctx, restaurantID)
}

type MockRestaurantService struct {
	mock.Mock
}

func (m *MockRestaurantService) Get(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) Update(ctx context.Context, id uuid.UUID, update *models.RestaurantUpdate) (*models.Restaurant, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) CreateStaff(ctx context.Context, restaurantID uuid.UUID, req *models.StaffRequest) (*models.User, error) {
	args := m.Called(ctx, restaurantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ListStaff(ctx context.Context, restaurantID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, restaurantID, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, restaurantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Build(ctx context.Context, restaurantID uuid.UUID, day time.Time) ([]byte, error) {
	args := m.Called(ctx, restaurantID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReportService) Export(ctx context.Context, restaurantID uuid.UUID, day time.Time) (string, error) {
	args := m.Called(ctx, restaurantID, day)
	return args.String(0), args.Error(1)
}

func (m *MockReportService) ExportAll(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *MockReportService) URL(ctx context.Context, restaurantID uuid.UUID, day time.Time) (string, error) {
	args := m.Called(ctx, restaurantID, day)
	return args.String(0), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}
