package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPreparationMinutes applies when no ordered product declares a preparation time.
const DefaultPreparationMinutes = 15

// DeliveryMode determines which optional order fields are required.
type DeliveryMode string

const (
	DeliveryModeTable    DeliveryMode = "table"
	DeliveryModeTakeaway DeliveryMode = "takeaway"
	DeliveryModeDelivery DeliveryMode = "delivery"
)

// Valid reports whether m is one of the known delivery modes.
func (m DeliveryMode) Valid() bool {
	switch m {
	case DeliveryModeTable, DeliveryModeTakeaway, DeliveryModeDelivery:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// forward lists the single legal forward step out of each non-terminal state.
var forward = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusDelivered,
}

// Valid reports whether s is one of the five known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is allowed:
// pending→preparing→ready→delivered, and cancelled from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return forward[s] == next
}

// Next returns the forward successor of s, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := forward[s]
	return n, ok
}

var orderNumberPattern = regexp.MustCompile(`^#(\d+)$`)

// FormatOrderNumber renders n as "#" followed by n zero-padded to at least three digits.
func FormatOrderNumber(n int) string {
	return fmt.Sprintf("#%03d", n)
}

// ParseOrderNumber extracts the integer part of a "#<digits>" order number.
func ParseOrderNumber(s string) (int, bool) {
	m := orderNumberPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextOrderNumber returns the number that follows last. An empty or malformed
// previous number restarts the sequence at #001.
func NextOrderNumber(last string) string {
	n, ok := ParseOrderNumber(last)
	if !ok {
		return FormatOrderNumber(1)
	}
	return FormatOrderNumber(n + 1)
}

// OrderFilter holds list criteria for the management order listing.
type OrderFilter struct {
	Status *OrderStatus `json:"status,omitempty"`
	From   *time.Time   `json:"from,omitempty"`
	To     *time.Time   `json:"to,omitempty"`
	Limit  int          `json:"limit,omitempty"`
	Offset int          `json:"offset,omitempty"`
}

type Order struct {
	ID                          uuid.UUID       `json:"id" db:"id"`
	RestaurantID                uuid.UUID       `json:"restaurant_id" db:"restaurant_id"`
	Number                      string          `json:"number" db:"number"`
	CustomerName                string          `json:"customer_name" db:"customer_name"`
	CustomerPhone               *string         `json:"customer_phone,omitempty" db:"customer_phone"`
	DeliveryMode                DeliveryMode    `json:"delivery_mode" db:"delivery_mode"`
	TableNumber                 *int            `json:"table_number,omitempty" db:"table_number"`
	DeliveryAddress             *string         `json:"delivery_address,omitempty" db:"delivery_address"`
	Status                      OrderStatus     `json:"status" db:"status"`
	Total                       decimal.Decimal `json:"total" db:"total"`
	Notes                       *string         `json:"notes,omitempty" db:"notes"`
	EstimatedPreparationMinutes int             `json:"estimated_preparation_minutes" db:"estimated_preparation_minutes"`
	EstimatedDeliveryTime       time.Time       `json:"estimated_delivery_time" db:"estimated_delivery_time"`
	CreatedAt                   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time       `json:"updated_at" db:"updated_at"`
	Lines                       []*OrderLine    `json:"lines" db:"-"`
}

// DailySummary aggregates one restaurant's orders for a calendar day.
type DailySummary struct {
	RestaurantID uuid.UUID           `json:"restaurant_id"`
	Date         time.Time           `json:"date"`
	Orders       int                 `json:"orders"`
	Revenue      decimal.Decimal     `json:"revenue"`
	ByStatus     map[OrderStatus]int `json:"by_status"`
}
