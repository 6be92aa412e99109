package handlers

import (
	"log/slog"
	"net/http"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

// RestaurantHandlers serves the caller's own restaurant profile
type RestaurantHandlers struct {
	restaurants services.RestaurantService
	log         *slog.Logger
}

func NewRestaurantHandlers(restaurants services.RestaurantService, log *slog.Logger) *RestaurantHandlers {
	return &RestaurantHandlers{restaurants: restaurants, log: log}
}

// GetRestaurant handles GET /v1/restaurant
func (h *RestaurantHandlers) GetRestaurant(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	restaurant, err := h.restaurants.Get(c.Request().Context(), restaurantID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

// UpdateRestaurant handles PUT /v1/restaurant (owner only)
//
//	@Summary	Update the restaurant profile
//	@Tags		restaurant
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.RestaurantUpdate	true	"Fields to change"
//	@Success	200		{object}	models.Restaurant
//	@Router		/restaurant [put]
func (h *RestaurantHandlers) UpdateRestaurant(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	var req models.RestaurantUpdate
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	restaurant, err := h.restaurants.Update(c.Request().Context(), restaurantID, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}
