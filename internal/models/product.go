package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter holds list criteria for catalogue queries
type ProductFilter struct {
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	AvailableOnly bool       `json:"available_only,omitempty"`
	Query         string     `json:"query,omitempty"` // Name search
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}

type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	RestaurantID    uuid.UUID       `json:"restaurant_id" db:"restaurant_id"`
	CategoryID      uuid.UUID       `json:"category_id" db:"category_id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description,omitempty" db:"description"`
	Price           decimal.Decimal `json:"price" db:"price"`
	Available       bool            `json:"available" db:"available"`
	PreparationTime *int            `json:"preparation_time,omitempty" db:"preparation_time"` // Minutes
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
