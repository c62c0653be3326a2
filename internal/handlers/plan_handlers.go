package handlers

import (
	"errors"
	"net/http"

	"hauntedadmin/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PlanHandlers handles subscription plan HTTP requests
type PlanHandlers struct {
	planSvc services.PlanService
}

// NewPlanHandlers creates a new plan handlers instance
func NewPlanHandlers(planSvc services.PlanService) *PlanHandlers {
	return &PlanHandlers{
		planSvc: planSvc,
	}
}

// CreatePlan creates a new subscription plan
func (h *PlanHandlers) CreatePlan(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	plan, err := h.planSvc.Create(ctx, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, plan)
}

// GetPlan retrieves a single plan
func (h *PlanHandlers) GetPlan(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid plan ID")
	}

	plan, err := h.planSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve plan")
	}

	return c.JSON(http.StatusOK, plan)
}

// ListPlans lists plans, optionally only active ones
func (h *PlanHandlers) ListPlans(c echo.Context) error {
	ctx := c.Request().Context()

	activeOnly := c.QueryParam("active") == "true"

	plans, err := h.planSvc.List(ctx, activeOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list plans")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"plans": plans,
		"total": len(plans),
	})
}

// UpdatePlan applies partial updates to a plan
func (h *PlanHandlers) UpdatePlan(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid plan ID")
	}

	var req services.UpdatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	plan, err := h.planSvc.Update(ctx, id, &req)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, plan)
}

// DeletePlan removes a plan
func (h *PlanHandlers) DeletePlan(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid plan ID")
	}

	if err := h.planSvc.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Plan deleted successfully",
	})
}
