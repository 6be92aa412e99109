package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

// Request-scoped identity set by the auth middleware.
const (
	UserIDKey       contextKey = "user_id"
	RestaurantIDKey contextKey = "restaurant_id"
	RoleKey         contextKey = "role"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxOffset       = 1_000_000
	maxSearchLength = 100
)

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// GetRestaurantIDFromContext returns the tenant the caller acts for.
func GetRestaurantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RestaurantIDKey).(uuid.UUID)
	return id, ok
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// ValidateUUID parses a required identifier, naming field in the error.
func ValidateUUID(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid UUID", field)
	}
	return id, nil
}

// ValidatePositiveInteger checks 0 < value <= limit.
func ValidatePositiveInteger(value int, field string, limit int) error {
	switch {
	case value <= 0:
		return fmt.Errorf("%s must be positive", field)
	case value > limit:
		return fmt.Errorf("%s cannot exceed %d", field, limit)
	}
	return nil
}

func ValidateRequiredString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateOptionalString trims *value in place and enforces maxLength.
func ValidateOptionalString(value *string, field string, maxLength int) error {
	if value == nil {
		return nil
	}
	*value = strings.TrimSpace(*value)
	if len(*value) > maxLength {
		return fmt.Errorf("%s cannot exceed %d characters", field, maxLength)
	}
	return nil
}

// NilIfBlank returns nil for nil or whitespace-only strings.
func NilIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// SanitizeSearchQuery strips LIKE wildcards from a search term.
func SanitizeSearchQuery(query string) string {
	query = strings.NewReplacer("%", "", "_", "").Replace(query)
	if len(query) > maxSearchLength {
		query = query[:maxSearchLength]
	}
	return strings.TrimSpace(query)
}

// ValidatePaginationParams clamps limit into [1, 200] and rejects huge offsets.
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset = max(offset, 0)
	if offset > maxOffset {
		return 0, 0, fmt.Errorf("offset cannot exceed %d", maxOffset)
	}
	return limit, offset, nil
}
