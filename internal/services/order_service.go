package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/realtime"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxLineQuantity  = 999
	maxLinesPerOrder = 100
	staleBatchSize   = 200
	orderTxTimeout   = 15 * time.Second
)

type OrderService interface {
	// PlaceOrder validates, numbers, prices and persists an order in one
	// transaction, then announces it on the restaurant's channel.
	PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, restaurantID uuid.UUID, filter *models.OrderFilter) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, to models.OrderStatus) (*models.Order, error)
	DailySummary(ctx context.Context, restaurantID uuid.UUID, day time.Time) (*models.DailySummary, error)
	// CancelStale cancels orders that stayed pending for longer than olderThan.
	CancelStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type orderService struct {
	orders   repositories.OrderRepository
	notifier *Notifier
	log      *slog.Logger
	retries  int
	now      func() time.Time
}

func NewOrderService(orders repositories.OrderRepository, notifier *Notifier, log *slog.Logger, retries int) OrderService {
	if retries < 1 {
		retries = 1
	}
	return &orderService{
		orders:   orders,
		notifier: notifier,
		log:      log,
		retries:  retries,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	if err := normalizePlaceOrder(req); err != nil {
		return nil, err
	}

	// The transaction outlives a disconnecting client; it is bounded by its own timeout.
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orderTxTimeout)
	defer cancel()

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; attempt <= s.retries; attempt++ {
		order, err = s.placeOnce(txCtx, req)
		if !errors.Is(err, repositories.ErrOrderNumberTaken) {
			break
		}
		s.log.Warn("order number collision, retrying", "restaurant_id", req.RestaurantID, "attempt", attempt)
	}
	if errors.Is(err, repositories.ErrOrderNumberTaken) {
		return nil, ErrOrderNumberConflict
	}
	if err != nil {
		return nil, err
	}

	persisted, err := s.orders.GetByID(txCtx, order.ID)
	if err != nil {
		s.log.Warn("reload after create failed, returning in-memory order", "order_id", order.ID, "error", err)
		persisted = order
	}

	s.log.Info("order placed", "restaurant_id", persisted.RestaurantID, "order_id", persisted.ID, "number", persisted.Number, "total", persisted.Total.StringFixed(2))
	s.notifier.Notify(ctx, realtime.OrderCreated(persisted))
	return persisted, nil
}

// placeOnce runs one numbering and persistence attempt. Any error rolls the
// attempt back completely.
func (s *orderService) placeOnce(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	var order *models.Order
	err := s.orders.InTx(ctx, func(tx repositories.OrderTx) error {
		if err := tx.LockRestaurant(ctx, req.RestaurantID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrRestaurantNotFound
			}
			return fmt.Errorf("lock restaurant: %w", err)
		}

		last, err := tx.LastOrderNumber(ctx, req.RestaurantID)
		if err != nil {
			return fmt.Errorf("read last order number: %w", err)
		}

		now := s.now()
		lines, prepMinutes, err := validateLines(ctx, tx, req, now)
		if err != nil {
			return err
		}

		order = &models.Order{
			ID:                          uuid.New(),
			RestaurantID:                req.RestaurantID,
			Number:                      models.NextOrderNumber(last),
			CustomerName:                req.CustomerName,
			CustomerPhone:               req.CustomerPhone,
			DeliveryMode:                req.DeliveryMode,
			TableNumber:                 req.TableNumber,
			DeliveryAddress:             req.DeliveryAddress,
			Status:                      models.OrderStatusPending,
			Total:                       sumSubtotals(lines),
			Notes:                       req.Notes,
			EstimatedPreparationMinutes: prepMinutes,
			EstimatedDeliveryTime:       now.Add(time.Duration(prepMinutes) * time.Minute),
			CreatedAt:                   now,
			UpdatedAt:                   now,
			Lines:                       lines,
		}

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for _, line := range lines {
			line.OrderID = order.ID
			if err := tx.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// validateLines checks every requested line against the product table and
// prices it from the stored product. It also returns the longest preparation
// time among the products, or the default when none declares one.
func validateLines(ctx context.Context, tx repositories.OrderTx, req *models.PlaceOrderRequest, now time.Time) ([]*models.OrderLine, int, error) {
	lines := make([]*models.OrderLine, 0, len(req.Lines))
	prep := 0
	for i, requested := range req.Lines {
		product, err := tx.GetProduct(ctx, requested.ProductID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, 0, &LineError{Index: i, ProductID: requested.ProductID.String(), Err: ErrProductNotFound}
		case err != nil:
			return nil, 0, fmt.Errorf("load product %s: %w", requested.ProductID, err)
		case product.RestaurantID != req.RestaurantID:
			return nil, 0, &LineError{Index: i, ProductID: requested.ProductID.String(), Err: ErrCrossTenantProduct}
		case !product.Available:
			return nil, 0, &LineError{Index: i, ProductID: requested.ProductID.String(), Err: ErrProductUnavailable}
		}

		if product.PreparationTime != nil && *product.PreparationTime > prep {
			prep = *product.PreparationTime
		}

		unitPrice := product.Price.Round(2)
		lines = append(lines, &models.OrderLine{
			ID:             uuid.New(),
			ProductID:      product.ID,
			Quantity:       requested.Quantity,
			UnitPrice:      unitPrice,
			Subtotal:       unitPrice.Mul(decimal.NewFromInt(int64(requested.Quantity))).Round(2),
			Customizations: requested.Customizations,
			Note:           requested.Note,
			CreatedAt:      now,
			Product:        product,
		})
	}
	if prep == 0 {
		prep = models.DefaultPreparationMinutes
	}
	return lines, prep, nil
}

func sumSubtotals(lines []*models.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total.Round(2)
}

// normalizePlaceOrder checks required fields and drops the delivery fields
// that do not apply to the chosen mode.
func normalizePlaceOrder(req *models.PlaceOrderRequest) error {
	if req == nil {
		return invalid("body", "is required")
	}
	if req.RestaurantID == uuid.Nil {
		return invalid("restaurant_id", "is required")
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if err := common.ValidateRequiredString(req.CustomerName, "customer_name"); err != nil {
		return invalid("customer_name", "is required")
	}
	if len(req.CustomerName) > 120 {
		return invalid("customer_name", "cannot exceed 120 characters")
	}
	if req.DeliveryMode == "" {
		return invalid("delivery_mode", "is required")
	}
	if !req.DeliveryMode.Valid() {
		return invalid("delivery_mode", "must be one of table, takeaway, delivery")
	}
	if len(req.Lines) == 0 {
		return invalid("lines", "at least one line is required")
	}
	if len(req.Lines) > maxLinesPerOrder {
		return invalid("lines", fmt.Sprintf("cannot exceed %d lines", maxLinesPerOrder))
	}
	for i, line := range req.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if line.ProductID == uuid.Nil {
			return invalid(field+".product_id", "is required")
		}
		if err := common.ValidatePositiveInteger(line.Quantity, "quantity", maxLineQuantity); err != nil {
			return invalid(field+".quantity", err.Error())
		}
		req.Lines[i].Note = common.NilIfBlank(line.Note)
	}

	req.CustomerPhone = common.NilIfBlank(req.CustomerPhone)
	req.Notes = common.NilIfBlank(req.Notes)
	if err := common.ValidateOptionalString(req.Notes, "notes", 500); err != nil {
		return invalid("notes", err.Error())
	}

	switch req.DeliveryMode {
	case models.DeliveryModeTable:
		if req.TableNumber == nil || *req.TableNumber <= 0 {
			return invalid("table_number", "is required for table orders")
		}
		req.DeliveryAddress = nil
	case models.DeliveryModeDelivery:
		req.DeliveryAddress = common.NilIfBlank(req.DeliveryAddress)
		if req.DeliveryAddress == nil {
			return invalid("delivery_address", "is required for delivery orders")
		}
		req.TableNumber = nil
	case models.DeliveryModeTakeaway:
		req.TableNumber = nil
		req.DeliveryAddress = nil
	}
	return nil
}

func (s *orderService) GetPublic(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *orderService) Get(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetForRestaurant(ctx, restaurantID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *orderService) List(ctx context.Context, restaurantID uuid.UUID, filter *models.OrderFilter) ([]*models.Order, error) {
	if filter != nil && filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown order status")
	}
	if filter != nil && filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, invalid("from", "must be before to")
	}
	orders, err := s.orders.List(ctx, restaurantID, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// UpdateStatus applies one state-machine transition. The write is a
// compare-and-set on the status read, so a concurrent change yields
// ErrStatusConflict instead of overwriting it.
func (s *orderService) UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, invalid("status", "unknown order status")
	}
	current, err := s.Get(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	from := current.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if err := s.orders.UpdateStatus(ctx, restaurantID, id, from, to); err != nil {
		if errors.Is(err, repositories.ErrStatusChanged) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	updated, err := s.orders.GetForRestaurant(ctx, restaurantID, id)
	if err != nil {
		s.log.Warn("reload after status change failed", "order_id", id, "error", err)
		current.Status = to
		current.UpdatedAt = s.now()
		updated = current
	}

	s.log.Info("order status changed", "restaurant_id", restaurantID, "order_id", id, "from", from, "to", to)
	s.notifier.Notify(ctx, realtime.StatusChanged(updated, from))
	return updated, nil
}

func (s *orderService) DailySummary(ctx context.Context, restaurantID uuid.UUID, day time.Time) (*models.DailySummary, error) {
	return s.orders.DailySummary(ctx, restaurantID, day)
}

func (s *orderService) CancelStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.orders.ListStalePending(ctx, s.now().Add(-olderThan), staleBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale orders: %w", err)
	}

	cancelled := 0
	for _, order := range stale {
		_, err := s.UpdateStatus(ctx, order.RestaurantID, order.ID, models.OrderStatusCancelled)
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, ErrStatusConflict), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrOrderNotFound):
			// Picked up by staff in the meantime.
		default:
			return cancelled, err
		}
	}
	return cancelled, nil
}
