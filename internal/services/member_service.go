package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hauntedadmin/internal/caching"
	"hauntedadmin/internal/common"
	"hauntedadmin/internal/lifecycle"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrMemberNotFound = errors.New("member not found")

const memberCacheTTL = 10 * time.Minute

type CreateMemberRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	PlanID          string  `json:"plan_id"`
	DiscountPercent float64 `json:"discount_percent"`
	StartDate       *string `json:"start_date,omitempty"`
	PendingPayment  bool    `json:"pending_payment"`
}

type UpdateMemberRequest struct {
	Name            *string  `json:"name,omitempty"`
	Email           *string  `json:"email,omitempty"`
	PlanID          *string  `json:"plan_id,omitempty"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	StartDate       *string  `json:"start_date,omitempty"`
	EndDate         *string  `json:"end_date,omitempty"`
	Status          *string  `json:"status,omitempty"`
}

type ExtendMemberRequest struct {
	Days       *int    `json:"days,omitempty"`
	NewEndDate *string `json:"new_end_date,omitempty"`
}

// MemberView is a member row plus everything the back office derives from
// it: lifecycle status, days left and the discounted price.
type MemberView struct {
	*models.Member
	LifecycleStatus string `json:"lifecycle_status"`
	StatusVariant   string `json:"status_variant"`
	DaysLeft        string `json:"days_left"`
	FinalPriceCents *int64 `json:"final_price_cents,omitempty"`
}

type MemberService interface {
	Create(ctx context.Context, req *CreateMemberRequest) (*MemberView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MemberView, error)
	List(ctx context.Context, filters repositories.MemberFilters) ([]*MemberView, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateMemberRequest) (*MemberView, error)
	Extend(ctx context.Context, id uuid.UUID, req *ExtendMemberRequest) (*MemberView, error)
	SetAvatar(ctx context.Context, id uuid.UUID, objectName string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*MemberView, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type memberService struct {
	memberRepo repositories.MemberRepository
	planRepo   repositories.PlanRepository
	cacheSvc   caching.CacheService
	auditSvc   AuditLogsService
}

func NewMemberService(memberRepo repositories.MemberRepository, planRepo repositories.PlanRepository, cacheSvc caching.CacheService, auditSvc AuditLogsService) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		planRepo:   planRepo,
		cacheSvc:   cacheSvc,
		auditSvc:   auditSvc,
	}
}

func (s *memberService) toView(member *models.Member) *MemberView {
	classification := lifecycle.Classify(lifecycle.Membership{
		PendingPayment: member.PendingPayment(),
		Lifetime:       member.Lifetime,
		StartDate:      member.StartDate,
		EndDate:        member.EndDate,
	}, time.Now())

	view := &MemberView{
		Member:          member,
		LifecycleStatus: string(classification.Status),
		StatusVariant:   string(classification.Variant),
		DaysLeft:        classification.DaysLeftLabel(),
	}
	if member.PriceCents != nil {
		final := lifecycle.ApplyDiscount(*member.PriceCents, member.DiscountPercent)
		view.FinalPriceCents = &final
	}
	return view
}

func (s *memberService) toViews(members []*models.Member) []*MemberView {
	views := make([]*MemberView, 0, len(members))
	for _, member := range members {
		views = append(views, s.toView(member))
	}
	return views
}

func (s *memberService) Create(ctx context.Context, req *CreateMemberRequest) (*MemberView, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return nil, err
	}
	if err := common.ValidateDiscountPercent(req.DiscountPercent); err != nil {
		return nil, err
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return nil, errors.New("invalid plan_id")
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("plan not found")
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if !plan.Active {
		return nil, errors.New("plan is not active")
	}

	var startDate *time.Time
	if common.SafeString(req.StartDate) != "" {
		parsed, err := lifecycle.ParseDate(*req.StartDate)
		if err != nil {
			return nil, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		startDate = &parsed
	}

	derived := lifecycle.DeriveEndDate(plan.DurationDays, startDate)

	status := "active"
	if req.PendingPayment {
		status = models.StatusPending
	}

	member := &models.Member{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		PlanName:        plan.Name,
		PriceCents:      &plan.PriceCents,
		DiscountPercent: req.DiscountPercent,
		StartDate:       startDate,
		EndDate:         derived.EndDate,
		Lifetime:        derived.Lifetime,
		Status:          status,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.logActivity(ctx, member.ID, models.ActionInsert, nil, memberValues(member))
	return s.toView(member), nil
}

func (s *memberService) GetByID(ctx context.Context, id uuid.UUID) (*MemberView, error) {
	if cached, err := s.cacheSvc.GetMember(ctx, id); err == nil && cached != nil {
		return s.toView(cached), nil
	}

	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	if err := s.cacheSvc.SetMember(ctx, member, memberCacheTTL); err != nil {
		log.Printf("WARN: failed to cache member %s: %v", id, err)
	}
	return s.toView(member), nil
}

func (s *memberService) List(ctx context.Context, filters repositories.MemberFilters) ([]*MemberView, error) {
	members, err := s.memberRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return s.toViews(members), nil
}

func (s *memberService) Update(ctx context.Context, id uuid.UUID, req *UpdateMemberRequest) (*MemberView, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	oldValues := memberValues(member)
	datesChanged := false

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, errors.New("name cannot be empty")
		}
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, errors.New("email cannot be empty")
		}
		member.Email = strings.TrimSpace(*req.Email)
	}
	if req.DiscountPercent != nil {
		if err := common.ValidateDiscountPercent(*req.DiscountPercent); err != nil {
			return nil, err
		}
		member.DiscountPercent = *req.DiscountPercent
	}
	if req.Status != nil {
		if *req.Status != "active" && *req.Status != models.StatusPending {
			return nil, errors.New("status must be active or pending")
		}
		member.Status = *req.Status
	}
	if req.StartDate != nil {
		if *req.StartDate == "" {
			member.StartDate = nil
		} else {
			parsed, err := lifecycle.ParseDate(*req.StartDate)
			if err != nil {
				return nil, errors.New("invalid start_date, expected YYYY-MM-DD")
			}
			member.StartDate = &parsed
		}
		datesChanged = true
	}

	var plan *models.Plan
	if req.PlanID != nil {
		planID, err := uuid.Parse(*req.PlanID)
		if err != nil {
			return nil, errors.New("invalid plan_id")
		}
		plan, err = s.planRepo.GetByID(ctx, planID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, errors.New("plan not found")
			}
			return nil, fmt.Errorf("failed to load plan: %w", err)
		}
		member.PlanName = plan.Name
		member.PriceCents = &plan.PriceCents
		datesChanged = true
	}

	if req.EndDate != nil {
		// An explicit end date wins over plan-duration derivation.
		if *req.EndDate == "" {
			member.EndDate = nil
		} else {
			parsed, err := lifecycle.ParseDate(*req.EndDate)
			if err != nil {
				return nil, errors.New("invalid end_date, expected YYYY-MM-DD")
			}
			member.EndDate = &parsed
		}
		member.Lifetime = false
	} else if datesChanged {
		var durationDays *int
		if plan != nil {
			durationDays = plan.DurationDays
		} else if existing, err := s.planRepo.GetByName(ctx, member.PlanName); err == nil {
			durationDays = existing.DurationDays
		}
		derived := lifecycle.DeriveEndDate(durationDays, member.StartDate)
		member.EndDate = derived.EndDate
		member.Lifetime = derived.Lifetime
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.invalidate(ctx, id)
	s.logActivity(ctx, id, models.ActionUpdate, oldValues, memberValues(member))
	return s.toView(member), nil
}

// Extend pushes the member's end date forward. The new period is anchored
// on whichever is later, the current end date or today, so extending an
// expired membership starts the clock now instead of backfilling the gap.
func (s *memberService) Extend(ctx context.Context, id uuid.UUID, req *ExtendMemberRequest) (*MemberView, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	extendReq := lifecycle.ExtendRequest{Days: req.Days}
	if common.SafeString(req.NewEndDate) != "" {
		parsed, err := lifecycle.ParseDate(*req.NewEndDate)
		if err != nil {
			return nil, errors.New("invalid new_end_date, expected YYYY-MM-DD")
		}
		extendReq.NewEndDate = &parsed
	}

	oldValues := memberValues(member)

	newEnd, err := lifecycle.Extend(lifecycle.Membership{
		PendingPayment: member.PendingPayment(),
		Lifetime:       member.Lifetime,
		StartDate:      member.StartDate,
		EndDate:        member.EndDate,
	}, extendReq, time.Now())
	if err != nil {
		return nil, err
	}

	member.EndDate = &newEnd
	// Extensions are recorded when payment lands, so a pending member
	// becomes active again.
	member.Status = "active"

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to extend member: %w", err)
	}

	s.invalidate(ctx, id)
	s.logActivity(ctx, id, models.ActionExtend, oldValues, memberValues(member))
	return s.toView(member), nil
}

func (s *memberService) SetAvatar(ctx context.Context, id uuid.UUID, objectName string) error {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		return err
	}

	member.AvatarObject = &objectName
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return fmt.Errorf("failed to store avatar reference: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *memberService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		return err
	}
	if member.DeletedAt != nil {
		return errors.New("member is already deleted")
	}

	if err := s.memberRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.invalidate(ctx, id)
	s.logActivity(ctx, id, models.ActionSoftDelete, memberValues(member), nil)
	return nil
}

func (s *memberService) Restore(ctx context.Context, id uuid.UUID) (*MemberView, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if member.DeletedAt == nil {
		return nil, errors.New("member is not deleted")
	}

	if err := s.memberRepo.Restore(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to restore member: %w", err)
	}
	member.DeletedAt = nil

	s.invalidate(ctx, id)
	s.logActivity(ctx, id, models.ActionRestore, nil, memberValues(member))
	return s.toView(member), nil
}

// HardDelete permanently removes a member. Only soft-deleted members can
// be purged, which keeps a misclicked delete recoverable.
func (s *memberService) HardDelete(ctx context.Context, id uuid.UUID) error {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		return err
	}
	if member.DeletedAt == nil {
		return errors.New("member must be soft-deleted before it can be purged")
	}

	if err := s.memberRepo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to purge member: %w", err)
	}

	s.invalidate(ctx, id)
	s.logActivity(ctx, id, models.ActionDelete, memberValues(member), nil)
	return nil
}

func (s *memberService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cacheSvc.DeleteMember(ctx, id); err != nil {
		log.Printf("WARN: failed to invalidate member cache %s: %v", id, err)
	}
}

func (s *memberService) logActivity(ctx context.Context, id uuid.UUID, action string, oldValues, newValues models.JSONB) {
	if s.auditSvc == nil {
		return
	}
	changedBy := changedByFromContext(ctx)
	if err := s.auditSvc.LogActivity(ctx, "members", id.String(), action, changedBy, oldValues, newValues); err != nil {
		log.Printf("WARN: failed to write audit log for member %s: %v", id, err)
	}
}

func memberValues(member *models.Member) models.JSONB {
	values := models.JSONB{
		"name":             member.Name,
		"email":            member.Email,
		"plan_name":        member.PlanName,
		"discount_percent": member.DiscountPercent,
		"lifetime":         member.Lifetime,
		"status":           member.Status,
	}
	if member.StartDate != nil {
		values["start_date"] = member.StartDate.Format("2006-01-02")
	}
	if member.EndDate != nil {
		values["end_date"] = member.EndDate.Format("2006-01-02")
	}
	return values
}
