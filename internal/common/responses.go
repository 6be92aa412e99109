package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes carried in ErrorBody.Code.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeClient       = "CLIENT_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeServer       = "SERVER_ERROR"
)

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorResponse is the envelope of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func CreateErrorResponse(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}}
}

// SendError writes the envelope with an arbitrary status.
func SendError(c echo.Context, status int, code, message string, details map[string]string) error {
	return c.JSON(status, CreateErrorResponse(code, message, details))
}

func SendValidationError(c echo.Context, field, message string) error {
	return SendError(c, http.StatusBadRequest, CodeValidation, "Validation failed", map[string]string{field: message})
}

func SendClientError(c echo.Context, message string) error {
	return SendError(c, http.StatusBadRequest, CodeClient, message, nil)
}

func SendServerError(c echo.Context, message string) error {
	return SendError(c, http.StatusInternalServerError, CodeServer, message, nil)
}

// SendNotFoundError reports "<resource> not found".
func SendNotFoundError(c echo.Context, resource string) error {
	return SendError(c, http.StatusNotFound, CodeNotFound, resource+" not found", nil)
}

func SendConflictError(c echo.Context, code, message string) error {
	return SendError(c, http.StatusConflict, code, message, nil)
}

func SendUnauthorizedError(c echo.Context) error {
	return SendError(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access", nil)
}
