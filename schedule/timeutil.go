package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SlotLayout is the wall-clock form a time slot is keyed by.
	SlotLayout = "15:04"
	// DayLayout identifies one tournament day.
	DayLayout = "2006-01-02"
)

// NormalizeTimeInput turns free-text slot input into the HH:MM form: only
// digits are kept, capped at four, the first two read as hours and the rest
// as minutes. The result may still be an invalid clock time; ParseSlot
// decides that.
func NormalizeTimeInput(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		digits.WriteRune(r)
		if digits.Len() == 4 {
			break
		}
	}
	s := digits.String()
	if len(s) <= 2 {
		return s
	}
	return s[:2] + ":" + s[2:]
}

// ParseSlot parses an HH:MM slot value.
func ParseSlot(s string) (hour, minute int, err error) {
	t, perr := time.Parse(SlotLayout, s)
	if perr != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlotTime, s)
	}
	return t.Hour(), t.Minute(), nil
}

// CombineDayAndSlot builds the full timestamp for a slot on a tournament day
// in the tournament's display timezone.
func CombineDayAndSlot(day, slot string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrInvalidSlotTime, day)
	}
	hour, minute, err := ParseSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
}

// SlotOf formats a timestamp as its slot key in the display timezone.
func SlotOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(SlotLayout)
}

// DayOf formats a timestamp as its tournament day in the display timezone.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}
