package rules

import "time"

// TimeDescriptor is the time-gating portion of a Rule: calendar intervals
// (gates) and time-event instants (triggers).
type TimeDescriptor struct {
	CalendarItems  []CalendarItem
	TimeEventItems []TimeEventItem
}

// IsEmpty reports whether the descriptor carries no time information at
// all, used by Rule's primary-kind discriminator.
func (td TimeDescriptor) IsEmpty() bool {
	return len(td.CalendarItems) == 0 && len(td.TimeEventItems) == 0
}

// CalendarActive reports whether any CalendarItem is active at dt. A
// TimeDescriptor with no CalendarItems imposes no calendar gating (vacuously
// active), so a purely state-based or event-based rule isn't blocked by an
// absent calendar.
func (td TimeDescriptor) CalendarActive(dt time.Time) bool {
	if len(td.CalendarItems) == 0 {
		return true
	}
	for _, item := range td.CalendarItems {
		if item.Active(dt) {
			return true
		}
	}
	return false
}

// FiredTimeEvents returns the TimeEventItems whose target instant is dt.
func (td TimeDescriptor) FiredTimeEvents(dt time.Time) []TimeEventItem {
	var fired []TimeEventItem
	for _, item := range td.TimeEventItems {
		if item.Fires(dt) {
			fired = append(fired, item)
		}
	}
	return fired
}
