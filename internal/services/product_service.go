package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mesa/internal/caching"
	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuService manages a restaurant's categories and products and serves the
// cached public menu built from them.
type MenuService interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, restaurantID, id uuid.UUID) error
	ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]*models.Category, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, restaurantID, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) error
	DeleteProduct(ctx context.Context, restaurantID, id uuid.UUID) error
	ListProducts(ctx context.Context, restaurantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error)

	PublicMenu(ctx context.Context, restaurantID uuid.UUID) (*models.Menu, error)
	InvalidateMenu(ctx context.Context, restaurantID uuid.UUID)
}

type menuService struct {
	restaurants repositories.RestaurantRepository
	categories  repositories.CategoryRepository
	products    repositories.ProductRepository
	cache       caching.CacheService
	cacheTTL    time.Duration
	log         *slog.Logger
}

func NewMenuService(restaurants repositories.RestaurantRepository, categories repositories.CategoryRepository, products repositories.ProductRepository,
	cache caching.CacheService, cacheTTL time.Duration, log *slog.Logger) MenuService {
	return &menuService{
		restaurants: restaurants,
		categories:  categories,
		products:    products,
		cache:       cache,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

func validateCategory(category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return invalid("name", "is required")
	}
	if len(category.Name) > 80 {
		return invalid("name", "cannot exceed 80 characters")
	}
	if category.Position < 0 {
		return invalid("position", "cannot be negative")
	}
	category.Description = common.NilIfBlank(category.Description)
	return nil
}

func (s *menuService) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("category %q %w", category.Name, ErrAlreadyExists)
		}
		return err
	}
	s.InvalidateMenu(ctx, category.RestaurantID)
	return nil
}

func (s *menuService) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repositories.ErrDuplicate):
			return fmt.Errorf("category %q %w", category.Name, ErrAlreadyExists)
		}
		return err
	}
	s.InvalidateMenu(ctx, category.RestaurantID)
	return nil
}

func (s *menuService) DeleteCategory(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, restaurantID, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repositories.ErrInUse):
			return fmt.Errorf("category still has products: %w", ErrInUse)
		}
		return err
	}
	s.InvalidateMenu(ctx, restaurantID)
	return nil
}

func (s *menuService) ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]*models.Category, error) {
	categories, err := s.categories.List(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

// validateProduct checks the product fields and that its category belongs to
// the same restaurant.
func (s *menuService) validateProduct(ctx context.Context, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return invalid("name", "is required")
	}
	if len(product.Name) > 120 {
		return invalid("name", "cannot exceed 120 characters")
	}
	if !product.Price.IsPositive() {
		return invalid("price", "must be positive")
	}
	if !product.Price.Equal(product.Price.Round(2)) {
		return invalid("price", "cannot have more than 2 decimal places")
	}
	if product.Price.GreaterThan(decimal.NewFromInt(99999999)) {
		return invalid("price", "is too large")
	}
	if product.PreparationTime != nil {
		if err := common.ValidatePositiveInteger(*product.PreparationTime, "preparation_time", 24*60); err != nil {
			return invalid("preparation_time", err.Error())
		}
	}
	product.Description = common.NilIfBlank(product.Description)
	if product.CategoryID == uuid.Nil {
		return invalid("category_id", "is required")
	}
	if _, err := s.categories.GetByID(ctx, product.RestaurantID, product.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("category_id", "unknown category")
		}
		return err
	}
	return nil
}

func (s *menuService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validateProduct(ctx, product); err != nil {
		return err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := s.products.Create(ctx, product); err != nil {
		return err
	}
	s.InvalidateMenu(ctx, product.RestaurantID)
	return nil
}

func (s *menuService) GetProduct(ctx context.Context, restaurantID, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, restaurantID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *menuService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validateProduct(ctx, product); err != nil {
		return err
	}
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.InvalidateMenu(ctx, product.RestaurantID)
	return nil
}

func (s *menuService) SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) error {
	if err := s.products.SetAvailability(ctx, restaurantID, id, available); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.InvalidateMenu(ctx, restaurantID)
	return nil
}

func (s *menuService) DeleteProduct(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := s.products.Delete(ctx, restaurantID, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return ErrProductNotFound
		case errors.Is(err, repositories.ErrInUse):
			// Ordered products stay for order history; they can only be hidden.
			return fmt.Errorf("product appears in orders, mark it unavailable instead: %w", ErrInUse)
		}
		return err
	}
	s.InvalidateMenu(ctx, restaurantID)
	return nil
}

func (s *menuService) ListProducts(ctx context.Context, restaurantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error) {
	if filter != nil {
		filter.Query = common.SanitizeSearchQuery(filter.Query)
	}
	products, err := s.products.List(ctx, restaurantID, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

// PublicMenu returns the restaurant with its categories and their available
// products. Cache failures degrade to a database read.
func (s *menuService) PublicMenu(ctx context.Context, restaurantID uuid.UUID) (*models.Menu, error) {
	if menu, err := s.cache.GetMenu(ctx, restaurantID); err != nil {
		s.log.Warn("menu cache read failed", "restaurant_id", restaurantID, "error", err)
	} else if menu != nil {
		return menu, nil
	}

	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	categories, err := s.categories.List(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, restaurantID, &models.ProductFilter{AvailableOnly: true})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID]*models.Category, len(categories))
	for _, c := range categories {
		c.Products = []*models.Product{}
		byCategory[c.ID] = c
	}
	for _, p := range products {
		if c, ok := byCategory[p.CategoryID]; ok {
			c.Products = append(c.Products, p)
		}
	}
	if categories == nil {
		categories = []*models.Category{}
	}

	menu := &models.Menu{Restaurant: restaurant, Categories: categories}
	if err := s.cache.SetMenu(ctx, restaurantID, menu, s.cacheTTL); err != nil {
		s.log.Warn("menu cache write failed", "restaurant_id", restaurantID, "error", err)
	}
	return menu, nil
}

func (s *menuService) InvalidateMenu(ctx context.Context, restaurantID uuid.UUID) {
	if err := s.cache.InvalidateMenu(ctx, restaurantID); err != nil {
		s.log.Warn("menu cache invalidation failed", "restaurant_id", restaurantID, "error", err)
	}
}
