package schedule

import "errors"

// Validation rejections are local and never reach the mutation layer;
// ErrMutationFailed wraps a remote failure after optimistic state has been
// rolled back.
var (
	ErrBracketOrder     = errors.New("candidate time violates bracket order")
	ErrParticipantClash = errors.New("participant already plays at this time slot")
	ErrSlotOrder        = errors.New("slot time must keep slots strictly ascending")
	ErrUnknownSlot      = errors.New("no such time slot on this day")
	ErrInvalidSlotTime  = errors.New("invalid time value")
	ErrMoveInFlight     = errors.New("another move is still pending")
	ErrNotOnGrid        = errors.New("match has no source cell on the grid")
	ErrMutationFailed   = errors.New("schedule mutation failed")
)
