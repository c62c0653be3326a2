package repositories

import (
	"context"
	"strconv"

	"hauntedadmin/internal/models"

	"github.com/google/uuid"
)

// MemberFilters narrows member listings. Soft-deleted rows are excluded
// unless IncludeDeleted is set.
type MemberFilters struct {
	PlanName       *string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters MemberFilters) ([]*models.Member, error)
	ListExpiringWithin(ctx context.Context, days int) ([]*models.Member, error)
	ListRecentlyExpired(ctx context.Context, days int) ([]*models.Member, error)
}

type memberRepo struct {
	db DB
}

func NewMemberRepo(db DB) MemberRepository {
	return &memberRepo{db: db}
}

const memberColumns = `id, name, email, avatar_object, plan_name, price_cents, discount_percent, start_date, end_date, lifetime, status, deleted_at, created_at, updated_at`

func scanMember(row interface{ Scan(dest ...any) error }) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID, &member.Name, &member.Email, &member.AvatarObject,
		&member.PlanName, &member.PriceCents, &member.DiscountPercent,
		&member.StartDate, &member.EndDate, &member.Lifetime, &member.Status,
		&member.DeletedAt, &member.CreatedAt, &member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepo) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, name, email, avatar_object, plan_name, price_cents, discount_percent, start_date, end_date, lifetime, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		member.ID, member.Name, member.Email, member.AvatarObject,
		member.PlanName, member.PriceCents, member.DiscountPercent,
		member.StartDate, member.EndDate, member.Lifetime, member.Status,
	)
	return err
}

func (r *memberRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.db.QueryRow(ctx, query, id))
}

func (r *memberRepo) Update(ctx context.Context, member *models.Member) error {
	query := `
		UPDATE members
		SET name = $1, email = $2, avatar_object = $3, plan_name = $4, price_cents = $5, discount_percent = $6, start_date = $7, end_date = $8, lifetime = $9, status = $10, updated_at = NOW()
		WHERE id = $11
	`
	_, err := r.db.Exec(ctx, query,
		member.Name, member.Email, member.AvatarObject, member.PlanName,
		member.PriceCents, member.DiscountPercent, member.StartDate,
		member.EndDate, member.Lifetime, member.Status, member.ID,
	)
	return err
}

func (r *memberRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE members SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *memberRepo) Restore(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE members SET deleted_at = NULL, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *memberRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM members WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *memberRepo) List(ctx context.Context, filters MemberFilters) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE 1=1`
	args := []any{}
	argPos := 1

	if !filters.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if filters.PlanName != nil {
		query += ` AND plan_name = $` + strconv.Itoa(argPos)
		args = append(args, *filters.PlanName)
		argPos++
	}

	query += ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(argPos)
		args = append(args, filters.Limit)
		argPos++
	}
	if filters.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argPos)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// ListExpiringWithin returns live dated members whose end date falls inside
// the next `days` days (inclusive). Lifetime and pending members never match.
func (r *memberRepo) ListExpiringWithin(ctx context.Context, days int) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE deleted_at IS NULL
		  AND lifetime = FALSE
		  AND status != $1
		  AND end_date IS NOT NULL
		  AND end_date >= CURRENT_DATE
		  AND end_date <= CURRENT_DATE + $2::int
		ORDER BY end_date ASC
	`
	rows, err := r.db.Query(ctx, query, models.StatusPending, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// ListRecentlyExpired returns live dated members whose end date fell within
// the last `days` days.
func (r *memberRepo) ListRecentlyExpired(ctx context.Context, days int) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE deleted_at IS NULL
		  AND lifetime = FALSE
		  AND status != $1
		  AND end_date IS NOT NULL
		  AND end_date < CURRENT_DATE
		  AND end_date >= CURRENT_DATE - $2::int
		ORDER BY end_date DESC
	`
	rows, err := r.db.Query(ctx, query, models.StatusPending, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
