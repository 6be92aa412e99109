package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrOrderNumberTaken is returned when an insert collides with an existing
// order number of the same restaurant.
var ErrOrderNumberTaken = errors.New("order number already taken")

// ErrStatusChanged is returned when a status compare-and-set finds the order
// in a different state than expected.
var ErrStatusChanged = errors.New("order status changed concurrently")

const orderNumberConstraint = "orders_restaurant_number_key"

// OrderTx is the transactional view used while placing an order. Every read
// and write goes through the same database transaction.
type OrderTx interface {
	LockRestaurant(ctx context.Context, restaurantID uuid.UUID) error
	LastOrderNumber(ctx context.Context, restaurantID uuid.UUID) (string, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	InsertLine(ctx context.Context, line *models.OrderLine) error
}

type OrderRepository interface {
	// InTx runs fn in one transaction; an error from fn rolls everything back.
	InTx(ctx context.Context, fn func(tx OrderTx) error) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetForRestaurant(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, restaurantID uuid.UUID, filter *models.OrderFilter) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to models.OrderStatus) error
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*models.Order, error)
	DailySummary(ctx context.Context, restaurantID uuid.UUID, day time.Time) (*models.DailySummary, error)
}

type orderRepo struct {
	db Pool
}

func NewOrderRepo(db Pool) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, restaurant_id, number, customer_name, customer_phone, delivery_mode, table_number, delivery_address, status, total::text, notes, estimated_preparation_minutes, estimated_delivery_time, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	var total string
	err := row.Scan(&order.ID, &order.RestaurantID, &order.Number, &order.CustomerName, &order.CustomerPhone, &order.DeliveryMode, &order.TableNumber, &order.DeliveryAddress, &order.Status, &total, &order.Notes, &order.EstimatedPreparationMinutes, &order.EstimatedDeliveryTime, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if order.Total, err = parseMoney(total); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) InTx(ctx context.Context, fn func(tx OrderTx) error) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&orderTx{tx: tx})
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.attachLines(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) GetForRestaurant(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1 AND id = $2`
	order, err := scanOrder(r.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.attachLines(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// List returns the restaurant's orders, newest first, with their lines.
func (r *orderRepo) List(ctx context.Context, restaurantID uuid.UUID, filter *models.OrderFilter) ([]*models.Order, error) {
	if filter == nil {
		filter = &models.OrderFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1`
	args := []interface{}{restaurantID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another only if it is still
// in the expected state.
func (r *orderRepo) UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to models.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE restaurant_id = $2 AND id = $3 AND status = $4
	`
	tag, err := r.db.Exec(ctx, query, string(to), restaurantID, id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusChanged
	}
	return nil
}

// ListStalePending returns pending orders created before the cutoff across all restaurants.
func (r *orderRepo) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 AND created_at < $2 ORDER BY created_at ASC LIMIT $3`
	return r.queryOrders(ctx, query, string(models.OrderStatusPending), createdBefore, limit)
}

// DailySummary counts a restaurant's orders created on day (UTC) by status.
// Revenue excludes cancelled orders.
func (r *orderRepo) DailySummary(ctx context.Context, restaurantID uuid.UUID, day time.Time) (*models.DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)::text
		FROM orders
		WHERE restaurant_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY status
	`
	rows, err := r.db.Query(ctx, query, restaurantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &models.DailySummary{
		RestaurantID: restaurantID,
		Date:         start,
		ByStatus:     make(map[models.OrderStatus]int),
	}
	for rows.Next() {
		var (
			status models.OrderStatus
			count  int
			sum    string
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, err
		}
		amount, err := parseMoney(sum)
		if err != nil {
			return nil, err
		}
		summary.ByStatus[status] = count
		summary.Orders += count
		if status != models.OrderStatusCancelled {
			summary.Revenue = summary.Revenue.Add(amount)
		}
	}
	return summary, rows.Err()
}

func (r *orderRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// attachLines loads the lines of every order, each with its product.
func (r *orderRepo) attachLines(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		o.Lines = []*models.OrderLine{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT l.id, l.order_id, l.product_id, l.quantity, l.unit_price::text, l.subtotal::text, l.customizations, l.note, l.created_at,
		       p.id, p.restaurant_id, p.category_id, p.name, p.description, p.price::text, p.available, p.preparation_time, p.created_at, p.updated_at
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = ANY($1)
		ORDER BY l.created_at ASC, l.id ASC
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		line := &models.OrderLine{Product: &models.Product{}}
		p := line.Product
		var (
			unitPrice, subtotal, price string
			customizations             []byte
		)
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &unitPrice, &subtotal, &customizations, &line.Note, &line.CreatedAt,
			&p.ID, &p.RestaurantID, &p.CategoryID, &p.Name, &p.Description, &price, &p.Available, &p.PreparationTime, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		if line.UnitPrice, err = parseMoney(unitPrice); err != nil {
			return err
		}
		if line.Subtotal, err = parseMoney(subtotal); err != nil {
			return err
		}
		if p.Price, err = parseMoney(price); err != nil {
			return err
		}
		if line.Customizations, err = decodeCustomizations(customizations); err != nil {
			return fmt.Errorf("decode customizations: %w", err)
		}
		if o, ok := byID[line.OrderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	return rows.Err()
}

type orderTx struct {
	tx pgx.Tx
}

// LockRestaurant takes a row lock on the restaurant, serialising order number
// allocation for that restaurant until the transaction ends.
func (t *orderTx) LockRestaurant(ctx context.Context, restaurantID uuid.UUID) error {
	var id uuid.UUID
	err := t.tx.QueryRow(ctx, `SELECT id FROM restaurants WHERE id = $1 FOR UPDATE`, restaurantID).Scan(&id)
	return notFound(err)
}

// LastOrderNumber returns the number of the restaurant's most recent order, or
// "" when it has none.
func (t *orderTx) LastOrderNumber(ctx context.Context, restaurantID uuid.UUID) (string, error) {
	var number string
	err := t.tx.QueryRow(ctx, `
		SELECT number FROM orders
		WHERE restaurant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, restaurantID).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

// GetProduct reads a product by id regardless of restaurant; ownership is
// checked by the caller so cross-restaurant references can be reported.
func (t *orderTx) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(t.tx.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, restaurant_id, number, customer_name, customer_phone, delivery_mode, table_number, delivery_address, status, total, notes, estimated_preparation_minutes, estimated_delivery_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`
	_, err := t.tx.Exec(ctx, query, order.ID, order.RestaurantID, order.Number, order.CustomerName, order.CustomerPhone, string(order.DeliveryMode), order.TableNumber, order.DeliveryAddress, string(order.Status), money(order.Total), order.Notes, order.EstimatedPreparationMinutes, order.EstimatedDeliveryTime, order.CreatedAt)
	if isUniqueViolation(err, orderNumberConstraint) {
		return ErrOrderNumberTaken
	}
	return err
}

func (t *orderTx) InsertLine(ctx context.Context, line *models.OrderLine) error {
	customizations, err := encodeCustomizations(line.Customizations)
	if err != nil {
		return fmt.Errorf("encode customizations: %w", err)
	}
	query := `
		INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, subtotal, customizations, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = t.tx.Exec(ctx, query, line.ID, line.OrderID, line.ProductID, line.Quantity, money(line.UnitPrice), money(line.Subtotal), customizations, line.Note, line.CreatedAt)
	return err
}
