package services

import (
	"context"
	"errors"
	"time"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"

	"github.com/google/uuid"
)

type AuditLogsService interface {
	// Create audit log entry
	LogActivity(ctx context.Context, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error

	// Query audit logs
	ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetEntityHistory(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error)

	// Validation methods
	ValidateAuditFilters(filters *models.AuditLogFilters) error
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
	}
}

// LogActivity creates a new audit log entry with validation
func (s *auditLogsService) LogActivity(ctx context.Context, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	if tableName == "" {
		return errors.New("table_name is required")
	}
	if action == "" {
		return errors.New("action is required")
	}

	auditLog := &models.AuditLog{
		ID:        uuid.New(),
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		NewValues: newValues,
		OldValues: oldValues,
		ChangedBy: changedBy,
		CreatedAt: time.Now(),
	}

	return s.auditLogsRepo.Create(ctx, auditLog)
}

// ListAuditLogs retrieves multiple audit log entries with filtering
func (s *auditLogsService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	if err := s.ValidateAuditFilters(filters); err != nil {
		return nil, err
	}

	return s.auditLogsRepo.List(ctx, filters)
}

// GetEntityHistory retrieves audit history for a specific entity
func (s *auditLogsService) GetEntityHistory(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditLogsRepo.GetByTableAndRecord(ctx, tableName, recordID, limit, offset)
}

// ValidateAuditFilters performs security and performance validation on audit filters
func (s *auditLogsService) ValidateAuditFilters(filters *models.AuditLogFilters) error {
	if filters == nil {
		return nil
	}

	// Limit date range to prevent excessive data extraction
	if filters.StartDate != nil && filters.EndDate != nil {
		if filters.EndDate.Sub(*filters.StartDate) > 365*24*time.Hour {
			return errors.New("date range cannot exceed 1 year")
		}
	}

	if filters.Limit > 1000 {
		return errors.New("maximum limit is 1000 records")
	}

	return nil
}

// changedByFromContext pulls the acting admin out of the request context,
// or nil for system-initiated changes like scheduled jobs.
func changedByFromContext(ctx context.Context) *uuid.UUID {
	if adminID, ok := common.GetAdminIDFromContext(ctx); ok {
		return &adminID
	}
	return nil
}
