package lifecycle

import (
	"math"
	"time"
)

// Date layouts accepted at the boundary. The store exchanges ISO-8601 dates;
// some callers hand over full timestamps.
const dateLayout = "2006-01-02"

// DateOnly normalizes t to midnight UTC, dropping any time component. All
// calendar arithmetic in this package operates on normalized values so there
// is no timezone drift between call sites.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO-8601 date or date-time string into a UTC-midnight
// calendar date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOnly(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// DaysUntil returns ceil((end - today) / 1 day) with both dates normalized
// to UTC midnight. 0 means the membership expires today.
func DaysUntil(end, today time.Time) int {
	diff := DateOnly(end).Sub(DateOnly(today))
	return int(math.Ceil(diff.Hours() / 24))
}
