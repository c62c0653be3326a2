package lifecycle

import (
	"strconv"
	"time"
)

// Status is the derived membership status shown in listings.
type Status string

const (
	StatusActive         Status = "Active"
	StatusExpiringSoon   Status = "Expiring Soon"
	StatusExpired        Status = "Expired"
	StatusPendingPayment Status = "Pending payment"
)

// Variant is the severity used by the presentation layer.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
)

// ExpiringSoonWindowDays is the inclusive days-left window for "Expiring Soon".
const ExpiringSoonWindowDays = 7

// Membership is the minimal slice of a member record the engine needs.
// EndDate nil with Lifetime false means a concrete end date was expected but
// is missing or never computed.
type Membership struct {
	PendingPayment bool
	Lifetime       bool
	StartDate      *time.Time
	EndDate        *time.Time
}

// Classification is the result handed to callers for rendering and filtering.
// DaysLeft is nil when not meaningful (pending payment, missing end date);
// Infinite marks lifetime memberships and must render as "∞", never a number.
type Classification struct {
	Status   Status
	Variant  Variant
	DaysLeft *int
	Infinite bool
}

// DaysLeftLabel renders days-left for display.
func (c Classification) DaysLeftLabel() string {
	if c.Infinite {
		return "∞"
	}
	if c.DaysLeft == nil {
		return ""
	}
	return strconv.Itoa(*c.DaysLeft)
}

// Classify derives the status of a membership from its dates. today is
// caller-supplied so the function stays pure; it is normalized to UTC
// midnight internally. Classification never fails: a missing end date where
// a concrete one was expected degrades to Expired so list rendering cannot
// crash on bad data.
func Classify(m Membership, today time.Time) Classification {
	// The persisted "pending" flag is the only stored status that overrides
	// date math.
	if m.PendingPayment {
		return Classification{Status: StatusPendingPayment, Variant: VariantWarning}
	}

	if m.Lifetime {
		return Classification{Status: StatusActive, Variant: VariantSuccess, Infinite: true}
	}

	if m.EndDate == nil {
		// Concrete end date expected but absent. Display-only fallback,
		// never written back.
		return Classification{Status: StatusExpired, Variant: VariantError}
	}

	days := DaysUntil(*m.EndDate, today)
	switch {
	case days < 0:
		return Classification{Status: StatusExpired, Variant: VariantError, DaysLeft: &days}
	case days <= ExpiringSoonWindowDays:
		// Inclusive on both ends: expiring today still counts as Expiring
		// Soon, not Expired.
		return Classification{Status: StatusExpiringSoon, Variant: VariantWarning, DaysLeft: &days}
	default:
		return Classification{Status: StatusActive, Variant: VariantSuccess, DaysLeft: &days}
	}
}
