package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"mesa/internal/common"

	"github.com/labstack/echo/v4"
)

// AuditLog writes an audit record for every mutating management request and
// for every failed one. Reads that succeed are not recorded.
func AuditLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if !shouldAudit(method, c.Path(), err) {
				return err
			}

			ctx := c.Request().Context()
			attrs := []interface{}{
				"method", method,
				"path", c.Path(),
				"ip", c.RealIP(),
				"status", c.Response().Status,
			}
			if id, ok := common.GetRestaurantIDFromContext(ctx); ok {
				attrs = append(attrs, "restaurant_id", id)
			}
			if id, ok := common.GetUserIDFromContext(ctx); ok {
				attrs = append(attrs, "user_id", id)
			}
			if role, ok := common.GetRoleFromContext(ctx); ok {
				attrs = append(attrs, "role", role)
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			log.Info("audit", attrs...)
			return err
		}
	}
}

func shouldAudit(method, path string, reqErr error) bool {
	if strings.Contains(path, "/stream") {
		return false
	}
	if reqErr != nil {
		return true
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
