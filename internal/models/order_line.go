package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customizations holds a line's free-form selections, e.g.
// {"size":"large","extras":["cheese","bacon"],"spicy":true}.
type Customizations map[string]interface{}

// OrderLine is one product line within an order. UnitPrice is a snapshot of
// the product price at order time.
type OrderLine struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	OrderID        uuid.UUID         `json:"order_id" db:"order_id"`
	ProductID      uuid.UUID         `json:"product_id" db:"product_id"`
	Quantity       int               `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price" db:"unit_price"`
	Subtotal       decimal.Decimal   `json:"subtotal" db:"subtotal"`
	Customizations Customizations    `json:"customizations,omitempty" db:"customizations"`
	Note           *string           `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	Product        *Product          `json:"product,omitempty" db:"-"`
}

// LineRequest is a customer-requested order line. Prices are never taken from it.
type LineRequest struct {
	ProductID      uuid.UUID         `json:"product_id"`
	Quantity       int               `json:"quantity"`
	Customizations Customizations    `json:"customizations,omitempty"`
	Note           *string           `json:"note,omitempty"`
}

// PlaceOrderRequest is the input of the public order creation workflow.
type PlaceOrderRequest struct {
	RestaurantID    uuid.UUID     `json:"restaurant_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   *string       `json:"customer_phone,omitempty"`
	DeliveryMode    DeliveryMode  `json:"delivery_mode"`
	TableNumber     *int          `json:"table_number,omitempty"`
	DeliveryAddress *string       `json:"delivery_address,omitempty"`
	Lines           []LineRequest `json:"lines"`
	Notes           *string       `json:"notes,omitempty"`
}
