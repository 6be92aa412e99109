package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/realtime"
	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers serves the staff-facing order endpoints
type OrderHandlers struct {
	orders      services.OrderService
	restaurants services.RestaurantService
	broker      realtime.Broker
	heartbeat   time.Duration
	log         *slog.Logger
}

func NewOrderHandlers(orders services.OrderService, restaurants services.RestaurantService, broker realtime.Broker, log *slog.Logger) *OrderHandlers {
	return &OrderHandlers{
		orders:      orders,
		restaurants: restaurants,
		broker:      broker,
		heartbeat:   realtime.DefaultHeartbeat,
		log:         log,
	}
}

// StatusRequest is the body of a status transition
type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func parseTimeParam(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, &services.ValidationError{Field: field, Message: "must be RFC3339 or YYYY-MM-DD"}
	}
	return &t, nil
}

// ListOrders handles GET /v1/orders?status=&from=&to=&limit=&offset=
//
//	@Summary	List orders
//	@Tags		orders
//	@Security	BearerAuth
//	@Produce	json
//	@Param		status	query	string	false	"Status filter"
//	@Param		from	query	string	false	"Created at or after"
//	@Param		to		query	string	false	"Created before"
//	@Param		limit	query	int		false	"Page size"
//	@Param		offset	query	int		false	"Offset"
//	@Success	200		{object}	map[string]interface{}
//	@Router		/orders [get]
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}

	filter := &models.OrderFilter{}
	if v := c.QueryParam("status"); v != "" {
		status := models.OrderStatus(v)
		filter.Status = &status
	}
	if filter.From, err = parseTimeParam(c.QueryParam("from"), "from"); err != nil {
		return respondError(c, h.log, err)
	}
	if filter.To, err = parseTimeParam(c.QueryParam("to"), "to"); err != nil {
		return respondError(c, h.log, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if filter.Limit, filter.Offset, err = common.ValidatePaginationParams(limit, offset); err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}

	orders, err := h.orders.List(c.Request().Context(), restaurantID, filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.orders.Get(c.Request().Context(), restaurantID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PATCH /v1/orders/:id/status
//
//	@Summary	Move an order through its lifecycle
//	@Tags		orders
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Order ID"
//	@Param		request	body		StatusRequest	true	"Target status"
//	@Success	200		{object}	models.Order
//	@Failure	409		{object}	common.ErrorResponse
//	@Failure	422		{object}	common.ErrorResponse
//	@Router		/orders/{id}/status [patch]
func (h *OrderHandlers) UpdateStatus(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if !req.Status.Valid() {
		return common.SendValidationError(c, "status", "unknown order status")
	}

	order, err := h.orders.UpdateStatus(c.Request().Context(), restaurantID, id, req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Stream handles GET /v1/orders/stream: every order event of the caller's restaurant.
//
//	@Summary	Stream restaurant order events (SSE)
//	@Tags		orders
//	@Security	BearerAuth
//	@Produce	text/event-stream
//	@Router		/orders/stream [get]
func (h *OrderHandlers) Stream(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	sub, err := h.broker.Subscribe(c.Request().Context(), realtime.RestaurantTopic(restaurantID))
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer sub.Close()
	return realtime.Stream(c, sub, h.heartbeat)
}

// Summary handles GET /v1/orders/summary?date=YYYY-MM-DD
//
//	@Summary	Daily order summary
//	@Tags		orders
//	@Security	BearerAuth
//	@Produce	json
//	@Param		date	query		string	false	"Day (UTC), defaults to today"
//	@Success	200		{object}	models.DailySummary
//	@Router		/orders/summary [get]
func (h *OrderHandlers) Summary(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	day, err := parseDay(c.QueryParam("date"), "date")
	if err != nil {
		return respondError(c, h.log, err)
	}
	summary, err := h.orders.DailySummary(c.Request().Context(), restaurantID, day)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Receipt handles GET /v1/orders/:id/receipt.pdf
//
//	@Summary	Printable order receipt
//	@Tags		orders
//	@Security	BearerAuth
//	@Produce	application/pdf
//	@Param		id	path	string	true	"Order ID"
//	@Router		/orders/{id}/receipt.pdf [get]
func (h *OrderHandlers) Receipt(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	ctx := c.Request().Context()

	order, err := h.orders.Get(ctx, restaurantID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	restaurant, err := h.restaurants.Get(ctx, restaurantID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var buf bytes.Buffer
	if err := renderReceipt(&buf, restaurant, order); err != nil {
		return respondError(c, h.log, fmt.Errorf("render receipt: %w", err))
	}

	number, _ := models.ParseOrderNumber(order.Number)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="receipt-%03d.pdf"`, number))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
