package schedule

import (
	"time"

	"github.com/google/uuid"
)

// SlotLength is the fixed length of every bookable slot.
const SlotLength = 30 * time.Minute

// Block is one recurring weekly availability window for a practitioner.
// Weekday is Monday-first: 0=Monday .. 6=Sunday. StartMinute and EndMinute
// are minutes after midnight, StartMinute < EndMinute.
type Block struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	Weekday        int
	StartMinute    int
	EndMinute      int
	Room           string
}

// WeekdayOf maps a calendar day to the Monday-first weekday numbering.
func WeekdayOf(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// SlotWithinBlock reports whether start is a valid slot start for b:
// on the block's weekday, aligned to the 30-minute grid from the block
// start, and with the full slot inside the block's range.
func SlotWithinBlock(b Block, start time.Time) bool {
	if WeekdayOf(start) != b.Weekday {
		return false
	}
	if start.Second() != 0 || start.Nanosecond() != 0 {
		return false
	}
	minute := start.Hour()*60 + start.Minute()
	if minute < b.StartMinute {
		return false
	}
	if (minute-b.StartMinute)%int(SlotLength/time.Minute) != 0 {
		return false
	}
	return minute+int(SlotLength/time.Minute) <= b.EndMinute
}
