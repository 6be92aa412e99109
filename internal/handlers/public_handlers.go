package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/realtime"
	"mesa/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PublicHandlers serves the unauthenticated customer-facing endpoints.
type PublicHandlers struct {
	orders      services.OrderService
	menu        services.MenuService
	restaurants services.RestaurantService
	broker      realtime.Broker
	heartbeat   time.Duration
	log         *slog.Logger
}

func NewPublicHandlers(orders services.OrderService, menu services.MenuService, restaurants services.RestaurantService, broker realtime.Broker, log *slog.Logger) *PublicHandlers {
	return &PublicHandlers{
		orders:      orders,
		menu:        menu,
		restaurants: restaurants,
		broker:      broker,
		heartbeat:   realtime.DefaultHeartbeat,
		log:         log,
	}
}

// PlaceOrder handles POST /v1/public/orders
//
//	@Summary	Place an order
//	@Tags		public
//	@Accept		json
//	@Produce	json
//	@Param		order	body		models.PlaceOrderRequest	true	"Order"
//	@Success	201		{object}	models.Order
//	@Failure	400		{object}	common.ErrorResponse
//	@Failure	409		{object}	common.ErrorResponse
//	@Router		/public/orders [post]
func (h *PublicHandlers) PlaceOrder(c echo.Context) error {
	var req models.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orders.PlaceOrder(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			return common.SendClientError(c, "Restaurant does not exist")
		}
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /v1/public/orders/:id
//
//	@Summary	Track an order
//	@Tags		public
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	models.Order
//	@Failure	404	{object}	common.ErrorResponse
//	@Router		/public/orders/{id} [get]
func (h *PublicHandlers) GetOrder(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.orders.GetPublic(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, order)
}

// StreamOrder handles GET /v1/public/orders/:id/stream, pushing status changes
// of a single order to the customer.
//
//	@Summary	Stream order status changes (SSE)
//	@Tags		public
//	@Produce	text/event-stream
//	@Param		id	path	string	true	"Order ID"
//	@Router		/public/orders/{id}/stream [get]
func (h *PublicHandlers) StreamOrder(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	ctx := c.Request().Context()
	if _, err := h.orders.GetPublic(ctx, id); err != nil {
		return respondError(c, h.log, err)
	}

	sub, err := h.broker.Subscribe(ctx, realtime.OrderTopic(id))
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer sub.Close()
	return realtime.Stream(c, sub, h.heartbeat)
}

// GetMenu handles GET /v1/public/restaurants/:id/menu
//
//	@Summary	Restaurant menu
//	@Tags		public
//	@Produce	json
//	@Param		id	path		string	true	"Restaurant ID"
//	@Success	200	{object}	models.Menu
//	@Failure	404	{object}	common.ErrorResponse
//	@Router		/public/restaurants/{id}/menu [get]
func (h *PublicHandlers) GetMenu(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	menu, err := h.menu.PublicMenu(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, menu)
}

// GetRestaurant handles GET /v1/public/restaurants/:id where id is a UUID or a slug.
//
//	@Summary	Restaurant profile
//	@Tags		public
//	@Produce	json
//	@Param		id	path		string	true	"Restaurant ID or slug"
//	@Success	200	{object}	models.Restaurant
//	@Failure	404	{object}	common.ErrorResponse
//	@Router		/public/restaurants/{id} [get]
func (h *PublicHandlers) GetRestaurant(c echo.Context) error {
	ctx := c.Request().Context()
	ref := c.Param("id")

	var (
		restaurant *models.Restaurant
		err        error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		restaurant, err = h.restaurants.Get(ctx, id)
	} else {
		restaurant, err = h.restaurants.GetBySlug(ctx, ref)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}
