package repositories

import (
	"context"

	"hauntedadmin/internal/models"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetByName(ctx context.Context, name string) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*models.Plan, error)
}

type planRepo struct {
	db DB
}

func NewPlanRepo(db DB) PlanRepository {
	return &planRepo{db: db}
}

const planColumns = `id, name, price_cents, duration_days, active, created_at, updated_at`

func scanPlan(row interface{ Scan(dest ...any) error }) (*models.Plan, error) {
	plan := &models.Plan{}
	err := row.Scan(&plan.ID, &plan.Name, &plan.PriceCents, &plan.DurationDays, &plan.Active, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) Create(ctx context.Context, plan *models.Plan) error {
	query := `
		INSERT INTO plans (id, name, price_cents, duration_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, plan.ID, plan.Name, plan.PriceCents, plan.DurationDays, plan.Active)
	return err
}

func (r *planRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	return scanPlan(r.db.QueryRow(ctx, query, id))
}

func (r *planRepo) GetByName(ctx context.Context, name string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE name = $1`
	return scanPlan(r.db.QueryRow(ctx, query, name))
}

func (r *planRepo) Update(ctx context.Context, plan *models.Plan) error {
	query := `
		UPDATE plans
		SET name = $1, price_cents = $2, duration_days = $3, active = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, plan.Name, plan.PriceCents, plan.DurationDays, plan.Active, plan.ID)
	return err
}

func (r *planRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM plans WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *planRepo) List(ctx context.Context, activeOnly bool) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY price_cents ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
