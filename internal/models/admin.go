package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin account statuses mirrored from the identity provider.
const (
	AdminStatusActive   = "active"
	AdminStatusInvited  = "invited"
	AdminStatusDisabled = "disabled"
)

// AdminAccount mirrors a staff identity held by the external auth provider.
// The provider is the source of truth for authentication; this record only
// tracks role and status for the back-office UI.
type AdminAccount struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	Role           string     `json:"role" db:"role"`
	Status         string     `json:"status" db:"status"`
	ProviderUserID string     `json:"provider_user_id" db:"provider_user_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	LastSeenAt     *time.Time `json:"last_seen_at" db:"last_seen_at"`
}
