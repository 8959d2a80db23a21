package rules

import "github.com/nymea/nymea-sub004/internal/status"

// RepeatMode is how a CalendarItem/TimeEventItem repeats.
type RepeatMode string

const (
	RepeatNone    RepeatMode = "none"
	RepeatHourly  RepeatMode = "hourly"
	RepeatDaily   RepeatMode = "daily"
	RepeatWeekly  RepeatMode = "weekly"
	RepeatMonthly RepeatMode = "monthly"
	RepeatYearly  RepeatMode = "yearly"
)

// RepeatingOption selects which anchor days a CalendarItem/TimeEventItem
// recurs on.
type RepeatingOption struct {
	Mode      RepeatMode
	WeekDays  []int // ISO 8601: 1=Monday .. 7=Sunday
	MonthDays []int // 1..31
}

// Validate enforces: weekDays only with mode=weekly, monthDays only
// with mode=monthly.
func (r RepeatingOption) Validate() *status.Code {
	switch r.Mode {
	case RepeatNone, RepeatHourly, RepeatDaily, RepeatYearly:
		if len(r.WeekDays) > 0 || len(r.MonthDays) > 0 {
			c := status.InvalidRepeatingOption
			return &c
		}
	case RepeatWeekly:
		if len(r.MonthDays) > 0 {
			c := status.InvalidRepeatingOption
			return &c
		}
		for _, d := range r.WeekDays {
			if d < 1 || d > 7 {
				c := status.InvalidRepeatingOption
				return &c
			}
		}
	case RepeatMonthly:
		if len(r.WeekDays) > 0 {
			c := status.InvalidRepeatingOption
			return &c
		}
		for _, d := range r.MonthDays {
			if d < 1 || d > 31 {
				c := status.InvalidRepeatingOption
				return &c
			}
		}
	default:
		c := status.InvalidRepeatingOption
		return &c
	}
	return nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
