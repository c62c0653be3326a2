package lifecycle

import "time"

// DerivedEnd is the result of deriving an end date from a plan duration.
// EndDate nil with Lifetime false means "cannot yet compute" (no start date):
// callers must not confuse that state with a lifetime plan.
type DerivedEnd struct {
	EndDate  *time.Time
	Lifetime bool
}

// DeriveEndDate computes a member's end date from a plan's duration and their
// start date. A nil or non-positive duration means the plan never expires.
// Runs both when a plan is first assigned and when the start date is edited
// afterwards, so the end date never goes stale.
func DeriveEndDate(durationDays *int, startDate *time.Time) DerivedEnd {
	if durationDays == nil || *durationDays <= 0 {
		return DerivedEnd{Lifetime: true}
	}
	if startDate == nil {
		return DerivedEnd{}
	}
	end := DateOnly(*startDate).AddDate(0, 0, *durationDays)
	return DerivedEnd{EndDate: &end}
}
