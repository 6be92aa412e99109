package services

import (
	"context"
	"errors"
	"strings"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
)

type RestaurantService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	Update(ctx context.Context, id uuid.UUID, update *models.RestaurantUpdate) (*models.Restaurant, error)
}

type restaurantService struct {
	restaurants repositories.RestaurantRepository
	menu        MenuService
}

func NewRestaurantService(restaurants repositories.RestaurantRepository, menu MenuService) RestaurantService {
	return &restaurantService{restaurants: restaurants, menu: menu}
}

func (s *restaurantService) Get(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.restaurants.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRestaurantNotFound
	}
	return restaurant, err
}

func (s *restaurantService) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	restaurant, err := s.restaurants.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRestaurantNotFound
	}
	return restaurant, err
}

// Update applies the non-nil fields of update. A blank optional field clears it.
func (s *restaurantService) Update(ctx context.Context, id uuid.UUID, update *models.RestaurantUpdate) (*models.Restaurant, error) {
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalid("name", "cannot be blank")
		}
		restaurant.Name = name
	}
	if update.Description != nil {
		restaurant.Description = common.NilIfBlank(update.Description)
	}
	if update.Phone != nil {
		restaurant.Phone = common.NilIfBlank(update.Phone)
	}
	if update.Address != nil {
		restaurant.Address = common.NilIfBlank(update.Address)
	}
	if update.IsOpen != nil {
		restaurant.IsOpen = *update.IsOpen
	}
	if err := common.ValidateOptionalString(restaurant.Description, "description", 1000); err != nil {
		return nil, invalid("description", err.Error())
	}

	if err := s.restaurants.Update(ctx, restaurant); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	s.menu.InvalidateMenu(ctx, id)
	return restaurant, nil
}
