package jobs

import (
	"context"
	"log"
	"time"

	"hauntedadmin/internal/lifecycle"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"
	"hauntedadmin/internal/services"
)

// ExpiryAlertService scans for memberships about to lapse or freshly
// lapsed and raises in-app notifications for the admins.
type ExpiryAlertService struct {
	memberRepo      repositories.MemberRepository
	notificationSvc services.NotificationService
	windowDays      int
}

func NewExpiryAlertService(memberRepo repositories.MemberRepository, notificationSvc services.NotificationService, windowDays int) *ExpiryAlertService {
	if windowDays <= 0 {
		windowDays = lifecycle.ExpiringSoonWindowDays
	}
	return &ExpiryAlertService{
		memberRepo:      memberRepo,
		notificationSvc: notificationSvc,
		windowDays:      windowDays,
	}
}

// Sweep runs one full pass. Alert creation is deduplicated per member and
// day downstream, so running it more than once a day is harmless.
func (s *ExpiryAlertService) Sweep(ctx context.Context) error {
	now := time.Now()

	expiring, err := s.memberRepo.ListExpiringWithin(ctx, s.windowDays)
	if err != nil {
		log.Printf("Failed to list expiring members: %v", err)
		return err
	}

	raised := 0
	for _, member := range expiring {
		daysLeft, ok := s.daysLeft(member, now)
		if !ok {
			continue
		}
		if err := s.notificationSvc.NotifyMemberExpiry(ctx, member, models.NotificationExpiringSoon, daysLeft); err != nil {
			log.Printf("Failed to raise expiring-soon alert for member %s: %v", member.ID, err)
			continue
		}
		raised++
	}

	expired, err := s.memberRepo.ListRecentlyExpired(ctx, 1)
	if err != nil {
		log.Printf("Failed to list recently expired members: %v", err)
		return err
	}

	for _, member := range expired {
		if err := s.notificationSvc.NotifyMemberExpiry(ctx, member, models.NotificationExpired, 0); err != nil {
			log.Printf("Failed to raise expired alert for member %s: %v", member.ID, err)
			continue
		}
		raised++
	}

	log.Printf("Membership expiry sweep done: %d expiring, %d expired, %d alerts raised", len(expiring), len(expired), raised)
	return nil
}

func (s *ExpiryAlertService) daysLeft(member *models.Member, now time.Time) (int, bool) {
	if member.EndDate == nil || member.Lifetime || member.PendingPayment() {
		return 0, false
	}
	return lifecycle.DaysUntil(*member.EndDate, now), true
}
