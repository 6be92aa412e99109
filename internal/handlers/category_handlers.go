package handlers

import (
	"log/slog"
	"net/http"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	menu services.MenuService
	log  *slog.Logger
}

func NewCategoryHandlers(menu services.MenuService, log *slog.Logger) *CategoryHandlers {
	return &CategoryHandlers{menu: menu, log: log}
}

// CategoryRequest represents the category create/update payload
type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Position    int     `json:"position"`
}

// ListCategories handles GET /v1/categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	categories, err := h.menu.ListCategories(c.Request().Context(), restaurantID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateCategory handles POST /v1/categories
//
//	@Summary	Create a menu category
//	@Tags		catalogue
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CategoryRequest	true	"Category"
//	@Success	201		{object}	models.Category
//	@Failure	409		{object}	common.ErrorResponse
//	@Router		/categories [post]
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	category := &models.Category{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Position:     req.Position,
	}
	if err := h.menu.CreateCategory(c.Request().Context(), category); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /v1/categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	category := &models.Category{
		ID:           id,
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Position:     req.Position,
	}
	if err := h.menu.UpdateCategory(c.Request().Context(), category); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /v1/categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.menu.DeleteCategory(c.Request().Context(), restaurantID, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
