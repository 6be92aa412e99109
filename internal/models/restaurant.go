package models

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant is the tenant boundary: every category, product, order and staff
// account belongs to exactly one restaurant.
type Restaurant struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	Address     *string   `json:"address,omitempty" db:"address"`
	IsOpen      bool      `json:"is_open" db:"is_open"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RestaurantUpdate carries the editable restaurant profile fields.
type RestaurantUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	IsOpen      *bool   `json:"is_open,omitempty"`
}
