package analytics

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"hauntedadmin/internal/caching"
	"hauntedadmin/internal/lifecycle"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"
)

const (
	statsCacheKey = "hauntedfam:dashboard:stats"
	statsCacheTTL = 5 * time.Minute
)

// Service aggregates membership numbers for the back-office dashboard.
type Service struct {
	memberRepo repositories.MemberRepository
	planRepo   repositories.PlanRepository
	cacheSvc   caching.CacheService
}

// DashboardStats summarizes the membership base at a point in time.
// Revenue is the monthly sum of discounted prices across live, dated or
// lifetime members.
type DashboardStats struct {
	TotalMembers    int            `json:"total_members"`
	ActiveMembers   int            `json:"active_members"`
	ExpiringSoon    int            `json:"expiring_soon"`
	ExpiredMembers  int            `json:"expired_members"`
	PendingMembers  int            `json:"pending_members"`
	LifetimeMembers int            `json:"lifetime_members"`
	RevenueCents    int64          `json:"revenue_cents"`
	MembersPerPlan  map[string]int `json:"members_per_plan"`
	ActivePlans     int            `json:"active_plans"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

func NewService(memberRepo repositories.MemberRepository, planRepo repositories.PlanRepository, cacheSvc caching.CacheService) *Service {
	return &Service{
		memberRepo: memberRepo,
		planRepo:   planRepo,
		cacheSvc:   cacheSvc,
	}
}

// DashboardStats computes (or serves from cache) the current membership
// summary.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if cached, err := s.cacheSvc.GetString(ctx, statsCacheKey); err == nil && cached != "" {
		var stats DashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	members, err := s.memberRepo.List(ctx, repositories.MemberFilters{})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		MembersPerPlan: make(map[string]int),
		GeneratedAt:    time.Now().UTC(),
	}
	now := time.Now()

	for _, member := range members {
		stats.TotalMembers++
		stats.MembersPerPlan[member.PlanName]++
		if member.Lifetime {
			stats.LifetimeMembers++
		}

		classification := lifecycle.Classify(lifecycle.Membership{
			PendingPayment: member.PendingPayment(),
			Lifetime:       member.Lifetime,
			StartDate:      member.StartDate,
			EndDate:        member.EndDate,
		}, now)

		switch classification.Status {
		case lifecycle.StatusActive:
			stats.ActiveMembers++
		case lifecycle.StatusExpiringSoon:
			stats.ExpiringSoon++
		case lifecycle.StatusExpired:
			stats.ExpiredMembers++
		case lifecycle.StatusPendingPayment:
			stats.PendingMembers++
		}

		if classification.Status != lifecycle.StatusExpired && classification.Status != lifecycle.StatusPendingPayment {
			stats.RevenueCents += memberRevenue(member)
		}
	}

	plans, err := s.planRepo.List(ctx, true)
	if err != nil {
		log.Printf("WARN: failed to count active plans: %v", err)
	} else {
		stats.ActivePlans = len(plans)
	}

	if encoded, err := json.Marshal(stats); err == nil {
		if err := s.cacheSvc.SetString(ctx, statsCacheKey, string(encoded), statsCacheTTL); err != nil {
			log.Printf("WARN: failed to cache dashboard stats: %v", err)
		}
	}

	return stats, nil
}

// InvalidateStats drops the cached summary after bulk changes.
func (s *Service) InvalidateStats(ctx context.Context) error {
	return s.cacheSvc.Delete(ctx, statsCacheKey)
}

func memberRevenue(member *models.Member) int64 {
	if member.PriceCents == nil {
		return 0
	}
	return lifecycle.ApplyDiscount(*member.PriceCents, member.DiscountPercent)
}
