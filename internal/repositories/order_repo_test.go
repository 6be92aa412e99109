package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OrderRepoTestSuite struct {
	suite.Suite
	mock         pgxmock.PgxPoolIface
	repo         OrderRepository
	restaurantID uuid.UUID
	ctx          context.Context
}

func (s *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.mock = mock
	s.repo = NewOrderRepo(mock)
	s.restaurantID = uuid.New()
	s.ctx = context.Background()
}

func (s *OrderRepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func orderRow(o *models.Order) []interface{} {
	return []interface{}{o.ID, o.RestaurantID, o.Number, o.CustomerName, o.CustomerPhone, o.DeliveryMode, o.TableNumber, o.DeliveryAddress, o.Status, o.Total.StringFixed(2), o.Notes, o.EstimatedPreparationMinutes, o.EstimatedDeliveryTime, o.CreatedAt, o.UpdatedAt}
}

var orderColumnNames = []string{"id", "restaurant_id", "number", "customer_name", "customer_phone", "delivery_mode", "table_number", "delivery_address", "status", "total", "notes", "estimated_preparation_minutes", "estimated_delivery_time", "created_at", "updated_at"}

var lineColumnNames = []string{"id", "order_id", "product_id", "quantity", "unit_price", "subtotal", "customizations", "note", "created_at",
	"p_id", "p_restaurant_id", "category_id", "name", "description", "price", "available", "preparation_time", "p_created_at", "p_updated_at"}

func (s *OrderRepoTestSuite) sampleOrder() *models.Order {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	table := 4
	return &models.Order{
		ID:                          uuid.New(),
		RestaurantID:                s.restaurantID,
		Number:                      "#007",
		CustomerName:                "Ana",
		CustomerPhone:               (*string)(nil),
		DeliveryMode:                models.DeliveryModeTable,
		TableNumber:                 &table,
		DeliveryAddress:             (*string)(nil),
		Status:                      models.OrderStatusPending,
		Total:                       decimal.RequireFromString("21.50"),
		Notes:                       (*string)(nil),
		EstimatedPreparationMinutes: 20,
		EstimatedDeliveryTime:       now.Add(20 * time.Minute),
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
}

func (s *OrderRepoTestSuite) TestInTx_LocksRestaurantAndReadsLastNumber() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT id FROM restaurants WHERE id = $1 FOR UPDATE`)).
		WithArgs(s.restaurantID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(s.restaurantID))
	s.mock.ExpectQuery(`SELECT number FROM orders\s+WHERE restaurant_id = \$1\s+ORDER BY created_at DESC, id DESC\s+LIMIT 1`).
		WithArgs(s.restaurantID).
		WillReturnRows(pgxmock.NewRows([]string{"number"}).AddRow("#041"))
	s.mock.ExpectCommit()

	var last string
	err := s.repo.InTx(s.ctx, func(tx OrderTx) error {
		if err := tx.LockRestaurant(s.ctx, s.restaurantID); err != nil {
			return err
		}
		var err error
		last, err = tx.LastOrderNumber(s.ctx, s.restaurantID)
		return err
	})

	s.Require().NoError(err)
	s.Equal("#041", last)
}

func (s *OrderRepoTestSuite) TestInTx_NoPreviousOrder() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT number FROM orders`).
		WithArgs(s.restaurantID).
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectCommit()

	last := "unset"
	err := s.repo.InTx(s.ctx, func(tx OrderTx) error {
		var err error
		last, err = tx.LastOrderNumber(s.ctx, s.restaurantID)
		return err
	})

	s.Require().NoError(err)
	s.Equal("", last)
}

func (s *OrderRepoTestSuite) TestInTx_UnknownRestaurantRollsBack() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT id FROM restaurants WHERE id = $1 FOR UPDATE`)).
		WithArgs(s.restaurantID).
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectRollback()

	err := s.repo.InTx(s.ctx, func(tx OrderTx) error {
		return tx.LockRestaurant(s.ctx, s.restaurantID)
	})

	s.ErrorIs(err, ErrNotFound)
}

func (s *OrderRepoTestSuite) TestInTx_NumberConflictRollsBack() {
	order := s.sampleOrder()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.RestaurantID, order.Number, order.CustomerName, order.CustomerPhone, "table", order.TableNumber, order.DeliveryAddress, "pending", "21.50", order.Notes, 20, order.EstimatedDeliveryTime, order.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_restaurant_number_key"})
	s.mock.ExpectRollback()

	err := s.repo.InTx(s.ctx, func(tx OrderTx) error {
		return tx.InsertOrder(s.ctx, order)
	})

	s.ErrorIs(err, ErrOrderNumberTaken)
}

func (s *OrderRepoTestSuite) TestInTx_LineFailureRollsBackOrder() {
	order := s.sampleOrder()
	line := &models.OrderLine{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: uuid.New(),
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("10.75"),
		Subtotal:  decimal.RequireFromString("21.50"),
		CreatedAt: order.CreatedAt,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(line.ID, order.ID, line.ProductID, 2, "10.75", "21.50", "{}", line.Note, line.CreatedAt).
		WillReturnError(errors.New("connection reset"))
	s.mock.ExpectRollback()

	err := s.repo.InTx(s.ctx, func(tx OrderTx) error {
		if err := tx.InsertOrder(s.ctx, order); err != nil {
			return err
		}
		return tx.InsertLine(s.ctx, line)
	})

	s.EqualError(err, "connection reset")
}

func (s *OrderRepoTestSuite) TestInsertLine_EncodesNestedCustomizations() {
	line := &models.OrderLine{
		ID:             uuid.New(),
		OrderID:        uuid.New(),
		ProductID:      uuid.New(),
		Quantity:       1,
		UnitPrice:      decimal.RequireFromString("8.00"),
		Subtotal:       decimal.RequireFromString("8.00"),
		Customizations: models.Customizations{"size": "large", "extras": []interface{}{"cheese", "bacon"}, "spicy": true},
		CreatedAt:      time.Now(),
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(line.ID, line.OrderID, line.ProductID, 1, "8.00", "8.00", `{"extras":["cheese","bacon"],"size":"large","spicy":true}`, line.Note, line.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	err := s.repo.InTx(s.ctx, func(tx OrderTx) error {
		return tx.InsertLine(s.ctx, line)
	})

	s.NoError(err)
}

func (s *OrderRepoTestSuite) TestInTx_GetProductIsNotTenantScoped() {
	productID := uuid.New()
	otherRestaurant := uuid.New()
	categoryID := uuid.New()
	now := time.Now()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT ` + productColumns + ` FROM products WHERE id = $1`)).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "restaurant_id", "category_id", "name", "description", "price", "available", "preparation_time", "created_at", "updated_at"}).
			AddRow(productID, otherRestaurant, categoryID, "Flat white", (*string)(nil), "3.20", true, (*int)(nil), now, now))
	s.mock.ExpectCommit()

	var product *models.Product
	err := s.repo.InTx(s.ctx, func(tx OrderTx) error {
		var err error
		product, err = tx.GetProduct(s.ctx, productID)
		return err
	})

	s.Require().NoError(err)
	s.Equal(otherRestaurant, product.RestaurantID)
	s.True(product.Price.Equal(decimal.RequireFromString("3.20")))
	s.Nil(product.PreparationTime)
}

func (s *OrderRepoTestSuite) TestGetForRestaurant_WithLines() {
	order := s.sampleOrder()
	productID := uuid.New()
	lineID := uuid.New()
	prep := 20
	note := "no sugar"

	s.mock.ExpectQuery(q(`SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1 AND id = $2`)).
		WithArgs(s.restaurantID, order.ID).
		WillReturnRows(pgxmock.NewRows(orderColumnNames).AddRow(orderRow(order)...))
	s.mock.ExpectQuery(`FROM order_lines l\s+JOIN products p ON p.id = l.product_id\s+WHERE l.order_id = ANY\(\$1\)`).
		WithArgs([]uuid.UUID{order.ID}).
		WillReturnRows(pgxmock.NewRows(lineColumnNames).AddRow(
			lineID, order.ID, productID, 2, "10.75", "21.50", []byte(`{"milk":"oat","shots":2,"syrups":["vanilla","caramel"]}`), &note, order.CreatedAt,
			productID, s.restaurantID, uuid.New(), "Latte", (*string)(nil), "10.75", true, &prep, order.CreatedAt, order.CreatedAt))

	got, err := s.repo.GetForRestaurant(s.ctx, s.restaurantID, order.ID)

	s.Require().NoError(err)
	s.Equal("#007", got.Number)
	s.True(got.Total.Equal(decimal.RequireFromString("21.5")))
	s.Require().Len(got.Lines, 1)
	s.Equal(models.Customizations{"milk": "oat", "shots": float64(2), "syrups": []interface{}{"vanilla", "caramel"}}, got.Lines[0].Customizations)
	s.Equal("Latte", got.Lines[0].Product.Name)
	s.True(got.Lines[0].Subtotal.Equal(decimal.RequireFromString("21.50")))
}

func (s *OrderRepoTestSuite) TestGetForRestaurant_OtherRestaurant() {
	id := uuid.New()
	s.mock.ExpectQuery(`FROM orders WHERE restaurant_id = \$1 AND id = \$2`).
		WithArgs(s.restaurantID, id).
		WillReturnError(pgx.ErrNoRows)

	got, err := s.repo.GetForRestaurant(s.ctx, s.restaurantID, id)

	s.Nil(got)
	s.ErrorIs(err, ErrNotFound)
}

func (s *OrderRepoTestSuite) TestList_AppliesFilters() {
	status := models.OrderStatusReady
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(q(`SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1 AND status = $2 AND created_at >= $3 ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`)).
		WithArgs(s.restaurantID, "ready", from, 10, 20).
		WillReturnRows(pgxmock.NewRows(orderColumnNames))

	orders, err := s.repo.List(s.ctx, s.restaurantID, &models.OrderFilter{Status: &status, From: &from, Limit: 10, Offset: 20})

	s.Require().NoError(err)
	s.Empty(orders)
}

func (s *OrderRepoTestSuite) TestUpdateStatus_CompareAndSet() {
	id := uuid.New()
	s.mock.ExpectExec(`UPDATE orders\s+SET status = \$1, updated_at = NOW\(\)\s+WHERE restaurant_id = \$2 AND id = \$3 AND status = \$4`).
		WithArgs("preparing", s.restaurantID, id, "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	s.NoError(s.repo.UpdateStatus(s.ctx, s.restaurantID, id, models.OrderStatusPending, models.OrderStatusPreparing))
}

func (s *OrderRepoTestSuite) TestUpdateStatus_LostRace() {
	id := uuid.New()
	s.mock.ExpectExec(`UPDATE orders`).
		WithArgs("ready", s.restaurantID, id, "preparing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.repo.UpdateStatus(s.ctx, s.restaurantID, id, models.OrderStatusPreparing, models.OrderStatusReady)
	s.ErrorIs(err, ErrStatusChanged)
}

func (s *OrderRepoTestSuite) TestDailySummary_ExcludesCancelledRevenue() {
	day := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(`SELECT status, COUNT\(\*\), COALESCE\(SUM\(total\), 0\)::text`).
		WithArgs(s.restaurantID, start, start.AddDate(0, 0, 1)).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count", "sum"}).
			AddRow(models.OrderStatusDelivered, 3, "45.00").
			AddRow(models.OrderStatusCancelled, 1, "12.00").
			AddRow(models.OrderStatusPending, 2, "8.50"))

	summary, err := s.repo.DailySummary(s.ctx, s.restaurantID, day)

	s.Require().NoError(err)
	s.Equal(6, summary.Orders)
	s.Equal(1, summary.ByStatus[models.OrderStatusCancelled])
	s.True(summary.Revenue.Equal(decimal.RequireFromString("53.50")), summary.Revenue.String())
	s.Equal(start, summary.Date)
}
