package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a subscription tier. DurationDays nil (or non-positive) means the
// plan never expires. Inactive plans stay valid for existing members but are
// excluded from the available-plans selection.
type Plan struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	PriceCents   int64     `json:"price_cents" db:"price_cents"`
	DurationDays *int      `json:"duration_days" db:"duration_days"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
