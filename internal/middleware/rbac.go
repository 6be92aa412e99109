package middleware

import (
	"net/http"

	"mesa/internal/common"
	"mesa/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects callers whose role is not one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if _, ok := common.GetRestaurantIDFromContext(ctx); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Restaurant not found")
			}
			role, _ := common.GetRoleFromContext(ctx)
			if !allowed[models.Role(role)] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// OwnerOnly is RequireRole(models.RoleOwner).
func OwnerOnly() echo.MiddlewareFunc {
	return RequireRole(models.RoleOwner)
}

// AnyStaff admits owners and staff.
func AnyStaff() echo.MiddlewareFunc {
	return RequireRole(models.RoleOwner, models.RoleStaff)
}
