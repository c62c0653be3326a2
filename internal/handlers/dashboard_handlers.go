package handlers

import (
	"net/http"

	"hauntedadmin/internal/analytics"
	"hauntedadmin/internal/common"

	"github.com/labstack/echo/v4"
)

// DashboardHandlers serves the aggregated numbers for the back-office
// landing page
type DashboardHandlers struct {
	analyticsSvc *analytics.Service
}

// NewDashboardHandlers creates a new dashboard handlers instance
func NewDashboardHandlers(analyticsSvc *analytics.Service) *DashboardHandlers {
	return &DashboardHandlers{
		analyticsSvc: analyticsSvc,
	}
}

// GetStats returns the membership summary for the dashboard
func (h *DashboardHandlers) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.analyticsSvc.DashboardStats(ctx)
	if err != nil {
		return common.SendServerError(c, "Failed to compute dashboard stats")
	}

	return c.JSON(http.StatusOK, stats)
}
