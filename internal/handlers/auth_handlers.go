package handlers

import (
	"errors"
	"net/http"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authSvc  services.AuthService
	adminSvc services.AdminService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authSvc services.AuthService, adminSvc services.AdminService) *AuthHandlers {
	return &AuthHandlers{
		authSvc:  authSvc,
		adminSvc: adminSvc,
	}
}

// SignInRequest represents the sign-in request payload
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignIn handles admin login with email and password
func (h *AuthHandlers) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	result, err := h.authSvc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, services.ErrAdminDisabled):
			return echo.NewHTTPError(http.StatusForbidden, "Account is disabled")
		case errors.Is(err, services.ErrTooManyAttempts):
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many sign-in attempts, try again later")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Sign-in failed")
		}
	}

	return c.JSON(http.StatusOK, result)
}

// SignOut drops the server-side session record for the current admin
func (h *AuthHandlers) SignOut(c echo.Context) error {
	ctx := c.Request().Context()

	adminID, ok := common.GetAdminIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	if err := h.authSvc.SignOut(ctx, adminID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign out")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Signed out successfully",
	})
}

// Me returns the authenticated admin's own account, enriched with what the
// identity provider knows about it
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	adminID, ok := common.GetAdminIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	admin, err := h.adminSvc.Describe(ctx, adminID)
	if err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Admin account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load account")
	}

	return c.JSON(http.StatusOK, admin)
}

// ChangePasswordRequest represents the change-password request payload
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword updates the current admin's password at the identity provider
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	adminID, ok := common.GetAdminIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.authSvc.ChangePassword(ctx, adminID, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Admin account not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}
