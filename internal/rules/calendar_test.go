package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTOD(t *testing.T, s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

// Boundary behavior from spec.md §8: a daily 23:00+120min item is active
// 23:00-00:59 inclusive, inactive at 01:00 and at 22:59, active at 00:30.
func TestCalendarItem_DailyAcrossMidnight(t *testing.T) {
	tod := mustTOD(t, "23:00")
	item := CalendarItem{StartTime: &tod, DurationMin: 120, Repeating: RepeatingOption{Mode: RepeatDaily}}

	assert.True(t, item.Active(at(2026, 3, 10, 23, 0)))
	assert.True(t, item.Active(at(2026, 3, 10, 23, 59)))
	assert.True(t, item.Active(at(2026, 3, 11, 0, 30)))
	assert.True(t, item.Active(at(2026, 3, 11, 0, 59)))
	assert.False(t, item.Active(at(2026, 3, 11, 1, 0)))
	assert.False(t, item.Active(at(2026, 3, 10, 22, 59)))
}

// Weekly mode anchored Saturday, duration two days: active from Sat 08:00
// through Mon 07:59.
func TestCalendarItem_WeeklyTwoDayDuration(t *testing.T) {
	tod := mustTOD(t, "08:00")
	// 2026-03-14 is a Saturday.
	item := CalendarItem{StartTime: &tod, DurationMin: 2880, Repeating: RepeatingOption{Mode: RepeatWeekly, WeekDays: []int{6}}}

	assert.False(t, item.Active(at(2026, 3, 14, 7, 59)))
	assert.True(t, item.Active(at(2026, 3, 14, 8, 0)))
	assert.True(t, item.Active(at(2026, 3, 15, 12, 0))) // Sunday, mid-span
	assert.True(t, item.Active(at(2026, 3, 16, 7, 59)))  // Monday, last minute
	assert.False(t, item.Active(at(2026, 3, 16, 8, 0)))
}

// Monthly mode: active only on the selected day-of-month, and absent
// entirely in a month where that day doesn't exist.
func TestCalendarItem_Monthly(t *testing.T) {
	tod := mustTOD(t, "12:00")
	item := CalendarItem{StartTime: &tod, DurationMin: 30, Repeating: RepeatingOption{Mode: RepeatMonthly, MonthDays: []int{31}}}

	assert.True(t, item.Active(at(2026, 1, 31, 12, 15)))
	assert.False(t, item.Active(at(2026, 2, 28, 12, 15))) // February has no 31st
}

// Hourly mode: active every hour for the configured number of minutes from
// the anchor minute.
func TestCalendarItem_Hourly(t *testing.T) {
	tod := mustTOD(t, "00:15")
	item := CalendarItem{StartTime: &tod, DurationMin: 10, Repeating: RepeatingOption{Mode: RepeatHourly}}

	assert.True(t, item.Active(at(2026, 6, 1, 14, 15)))
	assert.True(t, item.Active(at(2026, 6, 1, 14, 24)))
	assert.False(t, item.Active(at(2026, 6, 1, 14, 25)))
	assert.False(t, item.Active(at(2026, 6, 1, 14, 14)))
}

// Yearly absolute dateTime on Feb 29: only fires in leap years, per the
// documented "skip non-leap years" resolution in DESIGN.md.
func TestCalendarItem_YearlyFeb29_SkipsNonLeapYears(t *testing.T) {
	start := at(2024, time.February, 29, 10, 0) // 2024 is a leap year
	item := CalendarItem{StartDateTime: &start, DurationMin: 60, Repeating: RepeatingOption{Mode: RepeatYearly}}

	assert.True(t, item.Active(at(2024, 2, 29, 10, 30)), "must activate in the original leap year")
	assert.True(t, item.Active(at(2028, 2, 29, 10, 30)), "must activate in the next leap year")
	assert.False(t, item.Active(at(2025, 3, 1, 10, 30)), "2025 has no Feb 29; occurrence is skipped, not rolled to Mar 1")
	assert.False(t, item.Active(at(2026, 3, 1, 10, 30)))
}

func TestCalendarItem_Validate(t *testing.T) {
	tod := mustTOD(t, "10:00")
	dt := at(2026, 1, 1, 0, 0)

	assert.Nil(t, CalendarItem{StartTime: &tod, DurationMin: 1, Repeating: RepeatingOption{Mode: RepeatNone}}.Validate())
	assert.NotNil(t, CalendarItem{DurationMin: 1}.Validate(), "neither startTime nor startDateTime set")
	assert.NotNil(t, CalendarItem{StartTime: &tod, StartDateTime: &dt, DurationMin: 1}.Validate(), "both set")
	assert.NotNil(t, CalendarItem{StartTime: &tod, DurationMin: 0}.Validate(), "duration must be >= 1")
	assert.NotNil(t, CalendarItem{StartDateTime: &dt, DurationMin: 1, Repeating: RepeatingOption{Mode: RepeatWeekly}}.Validate(),
		"absolute dateTime may only repeat none or yearly")
}

// TimeEventItem yearly from Dec 31 23:59 fires once per year, at that exact
// instant.
func TestTimeEventItem_YearlyDecember31(t *testing.T) {
	target := at(2025, time.December, 31, 23, 59)
	item := TimeEventItem{DateTime: &target, Repeating: RepeatingOption{Mode: RepeatYearly}}

	assert.True(t, item.Fires(at(2025, 12, 31, 23, 59)))
	assert.True(t, item.Fires(at(2026, 12, 31, 23, 59)))
	assert.False(t, item.Fires(at(2026, 12, 31, 23, 58)))
	assert.False(t, item.Fires(at(2026, 1, 1, 0, 0)))
}

func TestTimeEventItem_WeeklyFiresOnlyOnSelectedDays(t *testing.T) {
	tod := mustTOD(t, "10:15")
	item := TimeEventItem{Time: &tod, Repeating: RepeatingOption{Mode: RepeatWeekly, WeekDays: []int{6}}}

	assert.True(t, item.Fires(at(2026, 3, 14, 10, 15))) // Saturday
	assert.False(t, item.Fires(at(2026, 3, 15, 10, 15))) // Sunday
}
