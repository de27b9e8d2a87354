package schedule

import (
	"fmt"
	"time"
)

// SlotShift identifies a slot column retiming by its old representative
// timestamp and its new one. Every match at Before moves to After; the date
// and table assignments are untouched.
type SlotShift struct {
	Before time.Time `json:"before"`
	After  time.Time `json:"after"`
}

// PlanSlotShift validates retiming slot column index (0-based, ascending)
// to rawTime on the given day. Free text is normalized first. The new time
// must keep the slot list strictly ascending relative to both neighbors;
// a violation rejects the edit before any mutation is issued.
func PlanSlotShift(day string, slots []string, index int, rawTime string, loc *time.Location) (SlotShift, error) {
	if index < 0 || index >= len(slots) {
		return SlotShift{}, fmt.Errorf("%w: index %d of %d slots", ErrUnknownSlot, index, len(slots))
	}

	norm := NormalizeTimeInput(rawTime)
	after, err := CombineDayAndSlot(day, norm, loc)
	if err != nil {
		return SlotShift{}, err
	}

	if index > 0 {
		prev, err := CombineDayAndSlot(day, slots[index-1], loc)
		if err != nil {
			return SlotShift{}, err
		}
		if !after.After(prev) {
			return SlotShift{}, fmt.Errorf("%w: %s is not after %s", ErrSlotOrder, norm, slots[index-1])
		}
	}
	if index < len(slots)-1 {
		next, err := CombineDayAndSlot(day, slots[index+1], loc)
		if err != nil {
			return SlotShift{}, err
		}
		if !after.Before(next) {
			return SlotShift{}, fmt.Errorf("%w: %s is not before %s", ErrSlotOrder, norm, slots[index+1])
		}
	}

	before, err := CombineDayAndSlot(day, slots[index], loc)
	if err != nil {
		return SlotShift{}, err
	}
	return SlotShift{Before: before, After: after}, nil
}
