package rules

import (
	"time"

	"github.com/nymea/nymea-sub004/internal/status"
)

// TimeEventItem is an instant (time-of-day or absolute dateTime), optionally
// repeated.
type TimeEventItem struct {
	Time     *TimeOfDay
	DateTime *time.Time
	Repeating RepeatingOption
}

// Validate enforces TimeEventItem's invariants.
func (t TimeEventItem) Validate() *status.Code {
	invalid := status.InvalidTimeEventItem
	if (t.Time == nil) == (t.DateTime == nil) {
		return &invalid
	}
	if t.DateTime != nil {
		if t.Repeating.Mode != RepeatNone && t.Repeating.Mode != RepeatYearly {
			return &invalid
		}
	}
	if code := t.Repeating.Validate(); code != nil {
		return code
	}
	return nil
}

// Fires reports whether this TimeEventItem's target instant is dt, assuming
// dt is minute-aligned (seconds truncated), as TimeManager.dateTimeChanged
// delivers.
func (t TimeEventItem) Fires(dt time.Time) bool {
	dt = dt.Truncate(time.Minute)

	if t.DateTime != nil {
		target := t.DateTime.Truncate(time.Minute)
		if t.Repeating.Mode != RepeatYearly {
			return dt.Equal(target)
		}
		shifted, ok := shiftYear(target, dt.Year())
		return ok && dt.Equal(shifted.Truncate(time.Minute))
	}

	if t.Repeating.Mode == RepeatHourly {
		return dt.Minute() == t.Time.Minute
	}
	if dt.Hour() != t.Time.Hour || dt.Minute() != t.Time.Minute {
		return false
	}
	switch t.Repeating.Mode {
	case RepeatNone, RepeatDaily:
		return true
	case RepeatWeekly:
		return containsInt(t.Repeating.WeekDays, isoWeekday(dt))
	case RepeatMonthly:
		return containsInt(t.Repeating.MonthDays, dt.Day())
	default:
		return false
	}
}
