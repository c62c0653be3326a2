package services

import (
	"context"
	"errors"
	"fmt"

	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"

	"github.com/google/uuid"
)

// NotificationService manages the in-app alerts the nightly sweep raises
// for memberships that are about to lapse or already have.
type NotificationService interface {
	NotifyMemberExpiry(ctx context.Context, member *models.Member, kind string, daysLeft int) error
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

// NotifyMemberExpiry records an alert for the member unless one of the
// same kind was already raised today.
func (s *notificationService) NotifyMemberExpiry(ctx context.Context, member *models.Member, kind string, daysLeft int) error {
	if kind != models.NotificationExpiringSoon && kind != models.NotificationExpired {
		return errors.New("unsupported notification kind")
	}

	exists, err := s.notificationRepo.ExistsForMemberToday(ctx, member.ID, kind)
	if err != nil {
		return fmt.Errorf("failed to check existing notifications: %w", err)
	}
	if exists {
		return nil
	}

	var message string
	switch {
	case kind == models.NotificationExpired:
		message = fmt.Sprintf("%s's %s membership has expired", member.Name, member.PlanName)
	case daysLeft == 0:
		message = fmt.Sprintf("%s's %s membership expires today", member.Name, member.PlanName)
	case daysLeft == 1:
		message = fmt.Sprintf("%s's %s membership expires tomorrow", member.Name, member.PlanName)
	default:
		message = fmt.Sprintf("%s's %s membership expires in %d days", member.Name, member.PlanName, daysLeft)
	}

	notification := &models.Notification{
		ID:       uuid.New(),
		Kind:     kind,
		MemberID: member.ID,
		PlanName: member.PlanName,
		DaysLeft: daysLeft,
		Message:  message,
	}

	return s.notificationRepo.Create(ctx, notification)
}

func (s *notificationService) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.notificationRepo.List(ctx, unreadOnly, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id)
}
