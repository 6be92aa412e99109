package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mesa/internal/common"
	"mesa/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// respondError translates a service error into the JSON error envelope.
// Unexpected errors are logged and reported without internal detail.
func respondError(c echo.Context, log *slog.Logger, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return common.SendValidationError(c, verr.Field, verr.Message)
	}

	var lerr *services.LineError
	if errors.As(err, &lerr) {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("CLIENT_ERROR", lerr.Err.Error(), map[string]string{
			"line":       strconv.Itoa(lerr.Index + 1),
			"product_id": lerr.ProductID,
		}))
	}

	switch {
	case errors.Is(err, services.ErrRestaurantNotFound):
		return common.SendNotFoundError(c, "Restaurant")
	case errors.Is(err, services.ErrOrderNotFound):
		return common.SendNotFoundError(c, "Order")
	case errors.Is(err, services.ErrProductNotFound):
		return common.SendNotFoundError(c, "Product")
	case errors.Is(err, services.ErrCategoryNotFound):
		return common.SendNotFoundError(c, "Category")
	case errors.Is(err, services.ErrReportNotFound):
		return common.SendNotFoundError(c, "Report")
	case errors.Is(err, services.ErrInvalidTransition):
		return c.JSON(http.StatusUnprocessableEntity, common.CreateErrorResponse("INVALID_TRANSITION", err.Error(), nil))
	case errors.Is(err, services.ErrStatusConflict):
		return common.SendConflictError(c, "STATUS_CONFLICT", "Order status was changed by another request, reload and retry")
	case errors.Is(err, services.ErrOrderNumberConflict):
		return common.SendConflictError(c, "NUMBER_CONFLICT", "Could not allocate an order number, please retry")
	case errors.Is(err, services.ErrAlreadyExists):
		return common.SendConflictError(c, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, services.ErrInUse):
		return common.SendConflictError(c, "IN_USE", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("INVALID_CREDENTIALS", "Invalid email or password", nil))
	}

	log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return common.SendServerError(c, "Internal server error")
}

// pathUUID parses the named path parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, &services.ValidationError{Field: name, Message: err.Error()}
	}
	return id, nil
}

// actingRestaurant returns the restaurant scope placed on the context by the authenticator.
func actingRestaurant(c echo.Context) (uuid.UUID, error) {
	id, ok := common.GetRestaurantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Restaurant not found")
	}
	return id, nil
}

// parseDay parses a YYYY-MM-DD date; blank means today (UTC).
func parseDay(value, field string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return day, nil
}
