package schedule

import "errors"

// Sentinel errors forming the failure taxonomy of the scheduling core.
// Handlers translate each into a transport response; none are swallowed
// inside the core.  ErrConcurrentModification is the only retryable one:
// re-running the whole operation re-reads current state and is idempotent.

// ErrInvalidSlot reports a malformed slot request: missing fields, bad
// date/time syntax, non-positive hall or capacity, or zero/negative duration.
var ErrInvalidSlot = errors.New("invalid training slot")

// ErrPastDate reports an attempt to schedule a slot on a calendar date that
// already passed.
var ErrPastDate = errors.New("training date is in the past")

// ErrSlotConflict reports a hall/time overlap with an existing slot.  Double
// booking a hall is a hard reject.
var ErrSlotConflict = errors.New("training slot conflicts with an existing one")

// ErrSlotNotFound reports an unknown slot id.
var ErrSlotNotFound = errors.New("training slot not found")

// ErrAlreadyEnrolled reports a join by a participant already on the roster
// or the waitlist.
var ErrAlreadyEnrolled = errors.New("participant already enrolled")

// ErrNotEnrolled reports a leave by a participant on neither list.
var ErrNotEnrolled = errors.New("participant not enrolled")

// ErrConcurrentModification reports a write race detected by the
// repository's optimistic version check.
var ErrConcurrentModification = errors.New("slot modified concurrently")
