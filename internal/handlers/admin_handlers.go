package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AdminHandlers handles staff account management HTTP requests
type AdminHandlers struct {
	adminSvc services.AdminService
}

// NewAdminHandlers creates a new admin handlers instance
func NewAdminHandlers(adminSvc services.AdminService) *AdminHandlers {
	return &AdminHandlers{
		adminSvc: adminSvc,
	}
}

// InviteAdmin creates a provider account for the email and records the
// local admin in invited status
func (h *AdminHandlers) InviteAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.InviteAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	admin, err := h.adminSvc.Invite(ctx, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, admin)
}

// GetAdmin retrieves a single admin account
func (h *AdminHandlers) GetAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid admin ID")
	}

	admin, err := h.adminSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Admin account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve admin account")
	}

	return c.JSON(http.StatusOK, admin)
}

// ListAdmins lists admin accounts with pagination
func (h *AdminHandlers) ListAdmins(c echo.Context) error {
	ctx := c.Request().Context()

	rawLimit, _ := strconv.Atoi(c.QueryParam("limit"))
	rawOffset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(rawLimit, rawOffset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	admins, err := h.adminSvc.List(ctx, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list admin accounts")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"admins": admins,
		"total":  len(admins),
	})
}

// DisableAdmin blocks an admin from signing in
func (h *AdminHandlers) DisableAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid admin ID")
	}

	if adminID, ok := common.GetAdminIDFromContext(ctx); ok && adminID == id {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot disable your own account")
	}

	if err := h.adminSvc.Disable(ctx, id); err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Admin account not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Admin account disabled",
	})
}

// EnableAdmin re-activates a disabled admin account
func (h *AdminHandlers) EnableAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid admin ID")
	}

	if err := h.adminSvc.Enable(ctx, id); err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Admin account not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Admin account enabled",
	})
}

// RemoveAdmin deletes the admin locally and at the identity provider
func (h *AdminHandlers) RemoveAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid admin ID")
	}

	if adminID, ok := common.GetAdminIDFromContext(ctx); ok && adminID == id {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot remove your own account")
	}

	if err := h.adminSvc.Remove(ctx, id); err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Admin account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove admin account")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Admin account removed",
	})
}
