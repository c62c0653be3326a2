package handlers

import (
	"net/http"
	"strconv"
	"time"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles audit logs related HTTP requests
type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

// NewAuditLogsHandlers creates a new audit logs handlers instance
func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{
		auditLogsService: auditLogsService,
	}
}

// ListAuditLogs retrieves audit logs with filtering and pagination
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	ctx := c.Request().Context()

	filters := &models.AuditLogFilters{}
	if table := c.QueryParam("table"); table != "" {
		filters.TableName = &table
	}
	if recordID := c.QueryParam("record_id"); recordID != "" {
		filters.RecordID = &recordID
	}
	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}
	if changedBy := c.QueryParam("changed_by"); changedBy != "" {
		uid, err := common.ValidateUUID(changedBy, "changed_by")
		if err != nil {
			return common.SendValidationError(c, "changed_by", err.Error())
		}
		filters.ChangedBy = &uid
	}
	if startDate := c.QueryParam("start_date"); startDate != "" {
		if err := common.ValidateDateFormat(startDate, "start_date"); err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		sd, _ := time.Parse("2006-01-02", startDate)
		filters.StartDate = &sd
	}
	if endDate := c.QueryParam("end_date"); endDate != "" {
		if err := common.ValidateDateFormat(endDate, "end_date"); err != nil {
			return common.SendValidationError(c, "end_date", err.Error())
		}
		ed, _ := time.Parse("2006-01-02", endDate)
		filters.EndDate = &ed
	}

	rawLimit, _ := strconv.Atoi(c.QueryParam("limit"))
	rawOffset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(rawLimit, rawOffset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	filters.Limit = limit
	filters.Offset = offset

	if err := h.auditLogsService.ValidateAuditFilters(filters); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logs, err := h.auditLogsService.ListAuditLogs(ctx, filters)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve audit logs")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   logs,
		"total":  len(logs),
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}

// GetEntityHistory retrieves audit history for a specific record
func (h *AuditLogsHandlers) GetEntityHistory(c echo.Context) error {
	ctx := c.Request().Context()

	tableName := c.Param("table")
	recordID := c.Param("record_id")
	if err := common.ValidateRequiredString(tableName, "table"); err != nil {
		return common.SendValidationError(c, "table", err.Error())
	}
	if err := common.ValidateRequiredString(recordID, "record_id"); err != nil {
		return common.SendValidationError(c, "record_id", err.Error())
	}

	rawLimit, _ := strconv.Atoi(c.QueryParam("limit"))
	rawOffset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(rawLimit, rawOffset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if rawLimit <= 0 {
		limit = 100
	}

	logs, err := h.auditLogsService.GetEntityHistory(ctx, tableName, recordID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve entity history")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":      logs,
		"total":     len(logs),
		"limit":     limit,
		"offset":    offset,
		"table":     tableName,
		"record_id": recordID,
	})
}
