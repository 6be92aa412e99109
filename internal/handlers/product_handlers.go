package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers handles product-related HTTP requests
type ProductHandlers struct {
	menu services.MenuService
	log  *slog.Logger
}

func NewProductHandlers(menu services.MenuService, log *slog.Logger) *ProductHandlers {
	return &ProductHandlers{menu: menu, log: log}
}

// ProductRequest represents the product create/update payload
type ProductRequest struct {
	CategoryID      string          `json:"category_id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Price           decimal.Decimal `json:"price" swaggertype:"string"`
	Available       *bool           `json:"available"`
	PreparationTime *int            `json:"preparation_time"`
}

// AvailabilityRequest toggles whether a product can be ordered
type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

func (r *ProductRequest) toProduct(restaurantID uuid.UUID) (*models.Product, error) {
	categoryID, err := common.ValidateUUID(r.CategoryID, "category_id")
	if err != nil {
		return nil, &services.ValidationError{Field: "category_id", Message: err.Error()}
	}
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return &models.Product{
		RestaurantID:    restaurantID,
		CategoryID:      categoryID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		Available:       available,
		PreparationTime: r.PreparationTime,
	}, nil
}

// ListProducts handles GET /v1/products?category_id=&available=&q=&limit=&offset=
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}

	filter := &models.ProductFilter{Query: common.SanitizeSearchQuery(c.QueryParam("q"))}
	if v := c.QueryParam("category_id"); v != "" {
		categoryID, err := common.ValidateUUID(v, "category_id")
		if err != nil {
			return common.SendValidationError(c, "category_id", err.Error())
		}
		filter.CategoryID = &categoryID
	}
	if v := c.QueryParam("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			return common.SendValidationError(c, "available", "must be true or false")
		}
		filter.AvailableOnly = available
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}

	products, err := h.menu.ListProducts(c.Request().Context(), restaurantID, filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	product, err := h.menu.GetProduct(c.Request().Context(), restaurantID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /v1/products
//
//	@Summary	Create a product
//	@Tags		catalogue
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ProductRequest	true	"Product"
//	@Success	201		{object}	models.Product
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/products [post]
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	product, err := req.toProduct(restaurantID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.menu.CreateProduct(c.Request().Context(), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /v1/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	product, err := req.toProduct(restaurantID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	product.ID = id
	if err := h.menu.UpdateProduct(c.Request().Context(), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, product)
}

// SetAvailability handles PATCH /v1/products/:id/availability
//
//	@Summary	Toggle product availability
//	@Tags		catalogue
//	@Security	BearerAuth
//	@Accept		json
//	@Param		id		path	string				true	"Product ID"
//	@Param		request	body	AvailabilityRequest	true	"Availability"
//	@Success	204
//	@Router		/products/{id}/availability [patch]
func (h *ProductHandlers) SetAvailability(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Available == nil {
		return common.SendValidationError(c, "available", "is required")
	}
	if err := h.menu.SetAvailability(c.Request().Context(), restaurantID, id, *req.Available); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteProduct handles DELETE /v1/products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.menu.DeleteProduct(c.Request().Context(), restaurantID, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
