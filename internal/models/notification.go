package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds produced by the background sweeps.
const (
	NotificationExpiringSoon = "membership_expiring_soon"
	NotificationExpired      = "membership_expired"
)

// Notification is an alert surfaced to staff, currently produced by the
// nightly membership-expiry sweep.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Kind      string    `json:"kind" db:"kind"`
	MemberID  uuid.UUID `json:"member_id" db:"member_id"`
	PlanName  string    `json:"plan_name" db:"plan_name"`
	DaysLeft  int       `json:"days_left" db:"days_left"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// JSONB represents a PostgreSQL JSONB field
type JSONB map[string]interface{}
