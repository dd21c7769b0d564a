// Package schedule contains the scheduling core of the service: the
// training slot value type, shape and retro-date validation, hall overlap
// detection and the enrollment roster state machine.  Everything in this
// package is pure; persistence and transport live elsewhere and call in.
package schedule

import (
    "fmt"
    "time"
)

// Layouts accepted on the wire.  Dates are calendar days, times are
// wall-clock with minute granularity.
const (
    DateLayout = "2006-01-02" // ISO date, e.g. "2024-06-01"
    TimeLayout = "15:04"      // ISO time, e.g. "10:30"
)

// Slot is a scheduled group training occupying a hall for a time interval
// on a calendar date.  The time interval is half-open [StartMin, EndMin):
// a slot ending at 11:00 does not conflict with one starting at 11:00.
//
// Fields:
//  ID             – opaque identifier, zero until persisted.
//  TrainingTypeID – kind of training (yoga, crossfit, ...), resolved elsewhere.
//  TrainerIDs     – trainers running the session, id references only.
//  Date           – calendar date, normalized to midnight UTC.
//  StartMin       – start of the session in minutes since midnight.
//  EndMin         – end of the session in minutes since midnight (exclusive).
//  HallNumber     – hall the session occupies, positive.
//  Capacity       – maximum size of the basic roster, positive.
//  Roster         – enrolled and waitlisted participants.
//  Version        – optimistic concurrency stamp maintained by the repository.
type Slot struct {
    ID             uint64
    TrainingTypeID uint64
    TrainerIDs     []uint64
    Date           time.Time
    StartMin       int
    EndMin         int
    HallNumber     int
    Capacity       int
    Roster         Roster
    Version        uint64
}

// StartTime renders StartMin back into "HH:MM" form.
func (s *Slot) StartTime() string { return minutesToClock(s.StartMin) }

// EndTime renders EndMin back into "HH:MM" form.
func (s *Slot) EndTime() string { return minutesToClock(s.EndMin) }

// DateString renders the slot date in ISO form.
func (s *Slot) DateString() string { return s.Date.Format(DateLayout) }

// DurationMinutes is the session length; always positive for a valid slot.
func (s *Slot) DurationMinutes() int { return s.EndMin - s.StartMin }

func minutesToClock(m int) string {
    return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// SlotRequest carries the plain wire data for creating or updating a slot.
// All fields arrive as submitted by the caller; ValidateShape turns a
// request into a Slot or rejects it.
type SlotRequest struct {
    TrainingTypeID uint64   `json:"training_type_id"`
    TrainerIDs     []uint64 `json:"trainer_ids"`
    Date           string   `json:"date"`       // "YYYY-MM-DD"
    StartTime      string   `json:"start_time"` // "HH:MM"
    EndTime        string   `json:"end_time"`   // "HH:MM"
    HallNumber     int      `json:"hall_number"`
    Capacity       int      `json:"capacity"`
}
