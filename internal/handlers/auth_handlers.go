package handlers

import (
	"net/http"

	"mandirdaan/internal/common"
	"mandirdaan/internal/middleware"
	"mandirdaan/internal/models"
	"mandirdaan/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userService services.UserService
	gate        *middleware.Gate
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, userService services.UserService, gate *middleware.Gate) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userService: userService,
		gate:        gate,
	}
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message string `json:"message"`
	models.AuthResult
}

// Login exchanges mandir, username and password for an access token
// @Summary Log in
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   body body models.LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 429 {object} common.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.authService.Login(ctx, req)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{Message: "Login successful", AuthResult: *result})
}

// CreateUser adds a user to the caller's mandir
// @Summary Create user
// @Tags    auth
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body models.CreateUserRequest true "User"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Failure 403 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router  /auth/users [post]
func (h *AuthHandlers) CreateUser(c echo.Context) error {
	claims, err := h.gate.RequireAdmin(c)
	if err != nil {
		return common.SendError(c, err)
	}
	ctx := c.Request().Context()

	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.userService.Create(ctx, claims.TenantID, req)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    user.Profile(),
	})
}

// ListUsers lists the users of the caller's mandir
// @Summary List users
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} common.ErrorResponse
// @Router  /auth/users [get]
func (h *AuthHandlers) ListUsers(c echo.Context) error {
	claims, err := h.gate.RequireAdmin(c)
	if err != nil {
		return common.SendError(c, err)
	}

	users, err := h.userService.List(c.Request().Context(), claims.TenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	if users == nil {
		users = []*models.User{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}

// Me returns the authenticated user
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} common.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandlers) Me(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}

	user, err := h.userService.Get(c.Request().Context(), claims.TenantID, claims.UserID)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}
