package schedule

// EnrollmentState describes a participant's standing relative to a slot.
type EnrollmentState string

const (
    NotEnrolled EnrollmentState = "NOT_ENROLLED"
    Enrolled    EnrollmentState = "ENROLLED"   // holds a seat on the basic roster
    Waitlisted  EnrollmentState = "WAITLISTED" // queued for the next vacancy
)

// Roster holds the participants of a slot: an insertion-ordered basic roster
// bounded by the slot capacity, and an insertion-ordered unbounded waitlist.
// A participant id appears in at most one of the two lists and never twice
// in the same list.  Only the roster state machine mutates these slices.
type Roster struct {
    Participants []uint64 // ENROLLED, len never exceeds capacity
    Waitlist     []uint64 // WAITLISTED, FIFO
}

// StateOf reports the participant's current state.
func (r *Roster) StateOf(participantID uint64) EnrollmentState {
    if contains(r.Participants, participantID) {
        return Enrolled
    }
    if contains(r.Waitlist, participantID) {
        return Waitlisted
    }
    return NotEnrolled
}

// IsEnrolled reports whether the participant holds a basic roster seat.
func (r *Roster) IsEnrolled(participantID uint64) bool {
    return contains(r.Participants, participantID)
}

// IsWaitlisted reports whether the participant is queued on the waitlist.
func (r *Roster) IsWaitlisted(participantID uint64) bool {
    return contains(r.Waitlist, participantID)
}

// Join enrolls a participant.  A free seat puts them on the basic roster;
// a full roster queues them at the tail of the waitlist.  Joining twice in
// either state fails with ErrAlreadyEnrolled.  The returned state is the
// participant's standing after the call.
func (r *Roster) Join(participantID uint64, capacity int) (EnrollmentState, error) {
    if r.StateOf(participantID) != NotEnrolled {
        return r.StateOf(participantID), ErrAlreadyEnrolled
    }
    if len(r.Participants) < capacity {
        r.Participants = append(r.Participants, participantID)
        return Enrolled, nil
    }
    r.Waitlist = append(r.Waitlist, participantID)
    return Waitlisted, nil
}

// Leave removes a participant from whichever list holds them.  When a basic
// roster seat frees up and the waitlist is non-empty, the longest-waiting
// participant is promoted into it; leaving the waitlist promotes nobody.
// The returned promoted id is zero when no promotion happened.  Leaving
// while not enrolled fails with ErrNotEnrolled.
func (r *Roster) Leave(participantID uint64) (promoted uint64, err error) {
    switch r.StateOf(participantID) {
    case Enrolled:
        r.Participants = remove(r.Participants, participantID)
        if len(r.Waitlist) > 0 {
            promoted = r.Waitlist[0]
            r.Waitlist = append([]uint64(nil), r.Waitlist[1:]...)
            r.Participants = append(r.Participants, promoted)
        }
        return promoted, nil
    case Waitlisted:
        r.Waitlist = remove(r.Waitlist, participantID)
        return 0, nil
    default:
        return 0, ErrNotEnrolled
    }
}

func contains(ids []uint64, id uint64) bool {
    for _, v := range ids {
        if v == id {
            return true
        }
    }
    return false
}

func remove(ids []uint64, id uint64) []uint64 {
    out := make([]uint64, 0, len(ids))
    for _, v := range ids {
        if v != id {
            out = append(out, v)
        }
    }
    return out
}
