package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hauntedadmin/internal/caching"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrPlanNotFound = errors.New("plan not found")

const planCacheTTL = time.Hour

type CreatePlanRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	// DurationDays nil or zero means the plan never expires.
	DurationDays *int `json:"duration_days,omitempty"`
}

type UpdatePlanRequest struct {
	Name         *string `json:"name,omitempty"`
	PriceCents   *int64  `json:"price_cents,omitempty"`
	DurationDays *int    `json:"duration_days,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

type PlanService interface {
	Create(ctx context.Context, req *CreatePlanRequest) (*models.Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdatePlanRequest) (*models.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*models.Plan, error)
}

type planService struct {
	planRepo repositories.PlanRepository
	cacheSvc caching.CacheService
	auditSvc AuditLogsService
}

func NewPlanService(planRepo repositories.PlanRepository, cacheSvc caching.CacheService, auditSvc AuditLogsService) PlanService {
	return &planService{
		planRepo: planRepo,
		cacheSvc: cacheSvc,
		auditSvc: auditSvc,
	}
}

func validatePlanDuration(durationDays *int) error {
	if durationDays != nil && *durationDays < 0 {
		return errors.New("duration_days cannot be negative")
	}
	return nil
}

func (s *planService) Create(ctx context.Context, req *CreatePlanRequest) (*models.Plan, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}
	if req.PriceCents < 0 {
		return nil, errors.New("price_cents cannot be negative")
	}
	if err := validatePlanDuration(req.DurationDays); err != nil {
		return nil, err
	}

	if _, err := s.planRepo.GetByName(ctx, strings.TrimSpace(req.Name)); err == nil {
		return nil, errors.New("a plan with this name already exists")
	}

	plan := &models.Plan{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		PriceCents:   req.PriceCents,
		DurationDays: req.DurationDays,
		Active:       true,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.invalidatePlans(ctx)
	s.logActivity(ctx, plan.ID, models.ActionInsert, nil, planValues(plan))
	return plan, nil
}

func (s *planService) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) Update(ctx context.Context, id uuid.UUID, req *UpdatePlanRequest) (*models.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	oldValues := planValues(plan)

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, errors.New("name cannot be empty")
		}
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, errors.New("price_cents cannot be negative")
		}
		plan.PriceCents = *req.PriceCents
	}
	if req.DurationDays != nil {
		if err := validatePlanDuration(req.DurationDays); err != nil {
			return nil, err
		}
		plan.DurationDays = req.DurationDays
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	s.invalidatePlans(ctx)
	s.logActivity(ctx, plan.ID, models.ActionUpdate, oldValues, planValues(plan))
	return plan, nil
}

func (s *planService) Delete(ctx context.Context, id uuid.UUID) error {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlanNotFound
		}
		return err
	}

	if err := s.planRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	s.invalidatePlans(ctx)
	s.logActivity(ctx, id, models.ActionDelete, planValues(plan), nil)
	return nil
}

func (s *planService) List(ctx context.Context, activeOnly bool) ([]*models.Plan, error) {
	// Only the full listing is cached; the filtered view is cheap to
	// derive from it.
	if cached, err := s.cacheSvc.GetPlans(ctx); err == nil && cached != nil {
		if !activeOnly {
			return cached, nil
		}
		active := make([]*models.Plan, 0, len(cached))
		for _, plan := range cached {
			if plan.Active {
				active = append(active, plan)
			}
		}
		return active, nil
	}

	plans, err := s.planRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetPlans(ctx, plans, planCacheTTL); err != nil {
		log.Printf("WARN: failed to cache plans: %v", err)
	}

	if !activeOnly {
		return plans, nil
	}
	active := make([]*models.Plan, 0, len(plans))
	for _, plan := range plans {
		if plan.Active {
			active = append(active, plan)
		}
	}
	return active, nil
}

func (s *planService) invalidatePlans(ctx context.Context) {
	if err := s.cacheSvc.InvalidatePlans(ctx); err != nil {
		log.Printf("WARN: failed to invalidate plan cache: %v", err)
	}
}

func (s *planService) logActivity(ctx context.Context, id uuid.UUID, action string, oldValues, newValues models.JSONB) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogActivity(ctx, "plans", id.String(), action, changedByFromContext(ctx), oldValues, newValues); err != nil {
		log.Printf("WARN: failed to write audit log for plan %s: %v", id, err)
	}
}

func planValues(plan *models.Plan) models.JSONB {
	values := models.JSONB{
		"name":        plan.Name,
		"price_cents": plan.PriceCents,
		"active":      plan.Active,
	}
	if plan.DurationDays != nil {
		values["duration_days"] = *plan.DurationDays
	}
	return values
}
