package rules

import (
	"fmt"
	"time"

	"github.com/nymea/nymea-sub004/internal/status"
)

// CalendarItem is an interval with a start (time-of-day or absolute
// dateTime) and a duration, optionally repeated.
type CalendarItem struct {
	StartTime     *TimeOfDay
	StartDateTime *time.Time
	DurationMin   int
	Repeating     RepeatingOption
}

// Validate enforces CalendarItem's invariants.
func (c CalendarItem) Validate() *status.Code {
	invalid := status.InvalidCalendarItem
	if (c.StartTime == nil) == (c.StartDateTime == nil) {
		return &invalid // exactly one of the two must be set
	}
	if c.DurationMin < 1 {
		return &invalid
	}
	if c.StartDateTime != nil {
		if c.Repeating.Mode != RepeatNone && c.Repeating.Mode != RepeatYearly {
			return &invalid
		}
	}
	if code := c.Repeating.Validate(); code != nil {
		return code
	}
	return nil
}

// lookbackWindow returns enough trailing candidate civil dates (including
// dt's own date) to find every anchor whose interval could still contain
// dt: an item is active if any such interval, anchored up to one unit
// earlier, contains dt. A generous window is safe: anchors whose interval
// can't reach dt simply fail containment below.
func lookbackWindow(dt time.Time, durationMin int) []time.Time {
	days := durationMin/1440 + 9 // 9 = one full week of slack plus two days for DST/month edges
	dates := make([]time.Time, 0, days+1)
	base := time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, dt.Location())
	for i := 0; i <= days; i++ {
		dates = append(dates, base.AddDate(0, 0, -i))
	}
	return dates
}

// Active reports whether this CalendarItem is active at dt.
func (c CalendarItem) Active(dt time.Time) bool {
	if c.StartDateTime != nil {
		return c.activeAbsolute(dt)
	}
	return c.activeRepeating(dt)
}

func (c CalendarItem) activeAbsolute(dt time.Time) bool {
	start := *c.StartDateTime
	duration := time.Duration(c.DurationMin) * time.Minute

	if c.Repeating.Mode != RepeatYearly {
		end := start.Add(duration)
		return !dt.Before(start) && dt.Before(end)
	}

	// Yearly: shift the start to whichever nearby year could make the
	// interval reach dt. Feb 29 only occurs in leap years: a non-leap target year is simply skipped.
	for _, year := range []int{dt.Year(), dt.Year() - 1} {
		shifted, ok := shiftYear(start, year)
		if !ok {
			continue
		}
		end := shifted.Add(duration)
		if !dt.Before(shifted) && dt.Before(end) {
			return true
		}
	}
	return false
}

func shiftYear(t time.Time, year int) (time.Time, bool) {
	if t.Month() == time.February && t.Day() == 29 && !isLeapYear(year) {
		return time.Time{}, false
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location()), true
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func (c CalendarItem) activeRepeating(dt time.Time) bool {
	duration := time.Duration(c.DurationMin) * time.Minute

	if c.Repeating.Mode == RepeatHourly {
		hours := c.DurationMin/60 + 2
		for i := 0; i <= hours; i++ {
			anchor := time.Date(dt.Year(), dt.Month(), dt.Day(), dt.Hour(), c.StartTime.Minute, 0, 0, dt.Location()).Add(-time.Duration(i) * time.Hour)
			end := anchor.Add(duration)
			if !dt.Before(anchor) && dt.Before(end) {
				return true
			}
		}
		return false
	}

	for _, day := range lookbackWindow(dt, c.DurationMin) {
		if !c.dayMatches(day) {
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), c.StartTime.Hour, c.StartTime.Minute, 0, 0, dt.Location())
		end := start.Add(duration)
		if !dt.Before(start) && dt.Before(end) {
			return true
		}
	}
	return false
}

// dayMatches reports whether day is a selected anchor day for this item's
// repeating mode. none/daily select every day: an item keyed only by
// time-of-day (no absolute date) is, by construction, re-anchored to
// "today" on every evaluation, which is indistinguishable from a daily
// repeat.
func (c CalendarItem) dayMatches(day time.Time) bool {
	switch c.Repeating.Mode {
	case RepeatNone, RepeatDaily:
		return true
	case RepeatWeekly:
		return containsInt(c.Repeating.WeekDays, isoWeekday(day))
	case RepeatMonthly:
		return containsInt(c.Repeating.MonthDays, day.Day())
	default:
		return false
	}
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (c CalendarItem) String() string {
	if c.StartDateTime != nil {
		return fmt.Sprintf("CalendarItem{at=%s dur=%dm repeat=%s}", c.StartDateTime.Format(time.RFC3339), c.DurationMin, c.Repeating.Mode)
	}
	return fmt.Sprintf("CalendarItem{at=%s dur=%dm repeat=%s}", c.StartTime, c.DurationMin, c.Repeating.Mode)
}
