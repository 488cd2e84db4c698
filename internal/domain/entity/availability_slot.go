package entity

import (
	"fmt"
	"time"
)

// AvailabilitySlot is one recurring weekly duty window. Start and End are
// offsets from midnight and both bounds are inclusive.
type AvailabilitySlot struct {
	Day   time.Weekday
	Start time.Duration
	End   time.Duration
}

// Contains reports whether t falls on the slot's weekday within [Start, End]
func (s AvailabilitySlot) Contains(t time.Time) bool {
	if t.Weekday() != s.Day {
		return false
	}
	clock := TimeOfDay(t)
	return clock >= s.Start && clock <= s.End
}

func (s AvailabilitySlot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Day, FormatClock(s.Start), FormatClock(s.End))
}

// TimeOfDay returns the offset of t from its local midnight
func TimeOfDay(t time.Time) time.Duration {
	h, m, sec := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(t.Nanosecond())
}

// FormatClock renders an offset from midnight as HH:MM
func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
