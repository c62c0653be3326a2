package repositories

import (
	"context"

	"hauntedadmin/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	// ExistsForMemberToday prevents the nightly sweep from producing
	// duplicate alerts for the same member and kind on the same day.
	ExistsForMemberToday(ctx context.Context, memberID uuid.UUID, kind string) (bool, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepo(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, kind, member_id, plan_name, days_left, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		notification.ID, notification.Kind, notification.MemberID,
		notification.PlanName, notification.DaysLeft, notification.Message,
	)
	return err
}

func (r *notificationRepo) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, kind, member_id, plan_name, days_left, message, read, created_at
		FROM notifications
	`
	if unreadOnly {
		query += ` WHERE read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.Kind, &n.MemberID, &n.PlanName, &n.DaysLeft, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *notificationRepo) ExistsForMemberToday(ctx context.Context, memberID uuid.UUID, kind string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE member_id = $1 AND kind = $2 AND created_at >= CURRENT_DATE
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, memberID, kind).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
