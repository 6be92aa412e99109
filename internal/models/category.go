package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	RestaurantID uuid.UUID  `json:"restaurant_id" db:"restaurant_id"`
	Name         string     `json:"name" db:"name"`
	Description  *string    `json:"description,omitempty" db:"description"`
	Position     int        `json:"position" db:"position"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	Products     []*Product `json:"products,omitempty" db:"-"` // For menu responses
}

// Menu is the public, customer-facing view of a restaurant's catalogue.
type Menu struct {
	Restaurant *Restaurant `json:"restaurant"`
	Categories []*Category `json:"categories"`
}
