package services

import (
	"errors"
	"fmt"
)

var (
	ErrRestaurantNotFound  = errors.New("restaurant not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductUnavailable  = errors.New("product not available")
	ErrCrossTenantProduct  = errors.New("product belongs to another restaurant")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrStatusConflict      = errors.New("order status changed concurrently")
	ErrOrderNumberConflict = errors.New("could not allocate an order number")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAlreadyExists       = errors.New("already exists")
	ErrReportNotFound      = errors.New("report not found")
	ErrInUse               = errors.New("still in use")
)

// ValidationError reports a client input problem on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// LineError ties a line-validation failure to the offending product.
type LineError struct {
	Index     int
	ProductID string
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (product %s): %v", e.Index+1, e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
