package handlers

import (
	"log/slog"
	"net/http"

	"mesa/internal/common"
	"mesa/internal/middleware"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles registration, login and staff accounts
type AuthHandlers struct {
	authService services.AuthService
	log         *slog.Logger
}

func NewAuthHandlers(authService services.AuthService, log *slog.Logger) *AuthHandlers {
	return &AuthHandlers{authService: authService, log: log}
}

// Register handles POST /v1/auth/register
//
//	@Summary	Register a restaurant and its owner
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.RegisterRequest	true	"Registration"
//	@Success	201		{object}	models.TokenResponse
//	@Failure	400		{object}	common.ErrorResponse
//	@Failure	409		{object}	common.ErrorResponse
//	@Router		/auth/register [post]
func (h *AuthHandlers) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	resp, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /v1/auth/login
//
//	@Summary	Log in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.LoginRequest	true	"Credentials"
//	@Success	200		{object}	models.TokenResponse
//	@Failure	401		{object}	common.ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Me handles GET /v1/me
//
//	@Summary	Current user
//	@Tags		auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	models.User
//	@Router		/me [get]
func (h *AuthHandlers) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	user, err := h.authService.Me(c.Request().Context(), id.RestaurantID, id.UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateStaff handles POST /v1/staff (owner only)
//
//	@Summary	Add a staff account
//	@Tags		auth
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.StaffRequest	true	"Staff member"
//	@Success	201		{object}	models.User
//	@Router		/staff [post]
func (h *AuthHandlers) CreateStaff(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	var req models.StaffRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	user, err := h.authService.CreateStaff(c.Request().Context(), restaurantID, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// ListStaff handles GET /v1/staff (owner only)
func (h *AuthHandlers) ListStaff(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	users, err := h.authService.ListStaff(c.Request().Context(), restaurantID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"staff": users})
}
