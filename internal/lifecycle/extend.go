package lifecycle

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks extension or pricing parameters the caller must fix
// before anything is persisted. Check with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// ExtendRequest carries exactly one of a day-count delta or an explicit
// target end date.
type ExtendRequest struct {
	Days       *int
	NewEndDate *time.Time
}

// Extend computes the new end date for a membership. It only computes;
// persisting the result is the caller's responsibility.
//
// For a day-count extension the anchor is the current end date when it is
// still in the future, otherwise today: an active member keeps their unused
// remaining days, an already-lapsed one does not get a back-dated extension.
func Extend(m Membership, req ExtendRequest, today time.Time) (time.Time, error) {
	if (req.Days == nil) == (req.NewEndDate == nil) {
		return time.Time{}, fmt.Errorf("%w: supply exactly one of days or new end date", ErrInvalidInput)
	}

	if m.Lifetime {
		// Converting lifetime to dated must be an explicit operation, never
		// a side effect of an extension.
		return time.Time{}, fmt.Errorf("%w: lifetime memberships cannot be extended", ErrInvalidInput)
	}

	if req.NewEndDate != nil {
		target := DateOnly(*req.NewEndDate)
		if m.StartDate != nil && target.Before(DateOnly(*m.StartDate)) {
			return time.Time{}, fmt.Errorf("%w: end date cannot precede start date", ErrInvalidInput)
		}
		return target, nil
	}

	days := *req.Days
	if days <= 0 {
		return time.Time{}, fmt.Errorf("%w: extension days must be a positive integer", ErrInvalidInput)
	}

	anchor := DateOnly(today)
	if m.EndDate != nil {
		if end := DateOnly(*m.EndDate); end.After(anchor) {
			anchor = end
		}
	}
	return anchor.AddDate(0, 0, days), nil
}
