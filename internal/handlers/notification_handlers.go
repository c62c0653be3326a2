package handlers

import (
	"net/http"
	"strconv"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NotificationHandlers handles notification-related HTTP requests
type NotificationHandlers struct {
	notificationSvc services.NotificationService
}

// NewNotificationHandlers creates a new notification handlers instance
func NewNotificationHandlers(notificationSvc services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{
		notificationSvc: notificationSvc,
	}
}

// ListNotifications lists expiry alerts, newest first
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	unreadOnly := c.QueryParam("unread") == "true"
	rawLimit, _ := strconv.Atoi(c.QueryParam("limit"))
	rawOffset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(rawLimit, rawOffset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	notifications, err := h.notificationSvc.List(ctx, unreadOnly, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list notifications")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// MarkNotificationRead marks a single notification as read
func (h *NotificationHandlers) MarkNotificationRead(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationSvc.MarkRead(ctx, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notification read")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Notification marked read",
	})
}
