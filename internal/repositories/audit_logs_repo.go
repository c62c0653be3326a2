package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"hauntedadmin/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	// Create a new audit log entry
	Create(ctx context.Context, auditLog *models.AuditLog) error

	// List audit logs with filtering options
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)

	// Get audit logs for a specific table and record
	GetByTableAndRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepo(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	auditLog.CreatedAt = time.Now()
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	query := `
		INSERT INTO audit_logs (id, table_name, record_id, action, new_values, old_values, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// Marshal JSONB fields
	var newValuesBytes, oldValuesBytes []byte
	var err error

	if auditLog.NewValues != nil {
		newValuesBytes, err = json.Marshal(auditLog.NewValues)
		if err != nil {
			return fmt.Errorf("failed to marshal new_values: %w", err)
		}
	}

	if auditLog.OldValues != nil {
		oldValuesBytes, err = json.Marshal(auditLog.OldValues)
		if err != nil {
			return fmt.Errorf("failed to marshal old_values: %w", err)
		}
	}

	_, err = r.db.Exec(ctx, query,
		auditLog.ID, auditLog.TableName, auditLog.RecordID, auditLog.Action,
		newValuesBytes, oldValuesBytes, auditLog.ChangedBy, auditLog.CreatedAt,
	)
	return err
}

func scanAuditLog(row interface{ Scan(dest ...any) error }) (*models.AuditLog, error) {
	entry := &models.AuditLog{}
	var newValuesBytes, oldValuesBytes []byte
	err := row.Scan(
		&entry.ID, &entry.TableName, &entry.RecordID, &entry.Action,
		&newValuesBytes, &oldValuesBytes, &entry.ChangedBy, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(newValuesBytes) > 0 {
		if err := json.Unmarshal(newValuesBytes, &entry.NewValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new_values: %w", err)
		}
	}
	if len(oldValuesBytes) > 0 {
		if err := json.Unmarshal(oldValuesBytes, &entry.OldValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal old_values: %w", err)
		}
	}
	return entry, nil
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	query := `
		SELECT id, table_name, record_id, action, new_values, old_values, changed_by, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []any{}
	argPos := 1

	addFilter := func(clause string, value any) {
		query += ` AND ` + clause + ` $` + strconv.Itoa(argPos)
		args = append(args, value)
		argPos++
	}

	if filters.TableName != nil {
		addFilter("table_name =", *filters.TableName)
	}
	if filters.RecordID != nil {
		addFilter("record_id =", *filters.RecordID)
	}
	if filters.Action != nil {
		addFilter("action =", *filters.Action)
	}
	if filters.ChangedBy != nil {
		addFilter("changed_by =", *filters.ChangedBy)
	}
	if filters.StartDate != nil {
		addFilter("created_at >=", *filters.StartDate)
	}
	if filters.EndDate != nil {
		addFilter("created_at <=", *filters.EndDate)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(argPos) + ` OFFSET $` + strconv.Itoa(argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (r *auditLogsRepo) GetByTableAndRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, table_name, record_id, action, new_values, old_values, changed_by, created_at
		FROM audit_logs
		WHERE table_name = $1 AND record_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tableName, recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
