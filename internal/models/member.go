package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusPending is the only membership status that is authoritative when
// stored; Active/Expiring Soon/Expired are always recomputed from dates.
const StatusPending = "pending"

// Member is a paying member of the community. PlanName is a denormalized
// copy of the plan's name at assignment time: renaming a plan later must not
// rewrite what existing members were sold under.
type Member struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Email           string     `json:"email" db:"email"`
	AvatarObject    *string    `json:"avatar_object,omitempty" db:"avatar_object"`
	PlanName        string     `json:"plan_name" db:"plan_name"`
	PriceCents      *int64     `json:"price_cents" db:"price_cents"`
	DiscountPercent float64    `json:"discount_percent" db:"discount_percent"`
	StartDate       *time.Time `json:"start_date" db:"start_date"`
	EndDate         *time.Time `json:"end_date" db:"end_date"`
	Lifetime        bool       `json:"lifetime" db:"lifetime"`
	Status          string     `json:"status" db:"status"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// PendingPayment reports whether the stored status short-circuits
// classification.
func (m *Member) PendingPayment() bool {
	return m.Status == StatusPending
}
