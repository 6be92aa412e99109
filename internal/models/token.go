package models

import "time"

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	UserID       string    `json:"user_id"`
	RestaurantID string    `json:"restaurant_id"`
	Role         Role      `json:"role"`
	IssuedAt     time.Time `json:"issued_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a restaurant together with its owner account.
type RegisterRequest struct {
	RestaurantName string  `json:"restaurant_name"`
	Slug           string  `json:"slug"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	OwnerName      string  `json:"owner_name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
}

// StaffRequest adds a staff account to the caller's restaurant.
type StaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
