// Package service contains the scheduling service: the single owner of
// training slot lifecycle.  It runs the validation → conflict → persist
// pipeline for slot mutations and drives the roster state machine for
// enrollment, retrying optimistic write conflicts.
package service

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/gymflow/training-service/internal/cache"
    "github.com/gymflow/training-service/internal/queue"
    "github.com/gymflow/training-service/internal/repository"
    "github.com/gymflow/training-service/internal/schedule"
)

// casRetries bounds how many times enroll/withdraw re-read and re-apply a
// roster transition after losing the repository's version CAS.  Exhaustion
// surfaces schedule.ErrConcurrentModification; callers may retry the whole
// call since re-validation re-reads current state.
const casRetries = 3

// EventPublisher is the slice of the queue publisher the scheduler needs.
// Publishing is best effort: failures are logged by the publisher and
// ignored here.
type EventPublisher interface {
    PublishEnrollment(ctx context.Context, ev queue.EnrollmentEvent) error
    PublishSlotCancelled(ctx context.Context, ev queue.SlotCancelledEvent) error
}

// Scheduler orchestrates the scheduling core over the slot repository.
// It is the only component that creates or deletes slots, and the only one
// that mutates rosters (through the schedule package's state machine).
type Scheduler struct {
    slots  repository.SlotRepository
    events EventPublisher       // optional
    cache  *cache.ScheduleCache // optional, nil-safe
    now    func() time.Time
}

// NewScheduler builds a Scheduler.  events and scheduleCache may be nil.
func NewScheduler(slots repository.SlotRepository, events EventPublisher, scheduleCache *cache.ScheduleCache) *Scheduler {
    if slots == nil {
        panic("nil slot repository passed to NewScheduler")
    }
    return &Scheduler{slots: slots, events: events, cache: scheduleCache, now: time.Now}
}

// CreateSlot validates the request, rejects retroactive dates, checks the
// target hall/date for overlaps and persists the new slot.  Error order:
// ErrInvalidSlot, ErrPastDate, ErrSlotConflict.
func (s *Scheduler) CreateSlot(ctx context.Context, req schedule.SlotRequest) (*schedule.Slot, error) {
    slot, err := schedule.ValidateShape(req)
    if err != nil {
        return nil, err
    }
    if schedule.IsPastDate(slot.Date, s.now()) {
        return nil, fmt.Errorf("%w: %s", schedule.ErrPastDate, slot.DateString())
    }
    existing, err := s.slots.FindByHallAndDate(ctx, slot.HallNumber, slot.Date)
    if err != nil {
        return nil, err
    }
    if conflict := schedule.FindOverlap(slot, existing); conflict != nil {
        return nil, fmt.Errorf("%w: hall %d is busy %s-%s",
            schedule.ErrSlotConflict, conflict.HallNumber, conflict.StartTime(), conflict.EndTime())
    }
    if err := s.slots.Save(ctx, &slot); err != nil {
        return nil, err
    }
    s.cache.Invalidate(ctx, slot.HallNumber, slot.DateString())
    return &slot, nil
}

// UpdateSlot re-runs the creation pipeline for an existing slot against the
// other slots on the target hall/date (the slot never conflicts with
// itself).  The roster is carried over unchanged; shrinking capacity below
// the current roster size is rejected so the roster bound always holds.
func (s *Scheduler) UpdateSlot(ctx context.Context, id uint64, req schedule.SlotRequest) (*schedule.Slot, error) {
    current, err := s.slots.FindByID(ctx, id)
    if err != nil {
        return nil, err
    }
    updated, err := schedule.ValidateShape(req)
    if err != nil {
        return nil, err
    }
    if updated.Capacity < len(current.Roster.Participants) {
        return nil, fmt.Errorf("%w: capacity %d below current roster size %d",
            schedule.ErrInvalidSlot, updated.Capacity, len(current.Roster.Participants))
    }
    if schedule.IsPastDate(updated.Date, s.now()) {
        return nil, fmt.Errorf("%w: %s", schedule.ErrPastDate, updated.DateString())
    }
    existing, err := s.slots.FindByHallAndDate(ctx, updated.HallNumber, updated.Date)
    if err != nil {
        return nil, err
    }
    updated.ID = current.ID
    if conflict := schedule.FindOverlap(updated, existing); conflict != nil {
        return nil, fmt.Errorf("%w: hall %d is busy %s-%s",
            schedule.ErrSlotConflict, conflict.HallNumber, conflict.StartTime(), conflict.EndTime())
    }
    updated.Roster = current.Roster
    updated.Version = current.Version
    if err := s.slots.Save(ctx, &updated); err != nil {
        return nil, err
    }
    // The slot may have moved halls or dates; drop both old and new keys.
    s.cache.Invalidate(ctx, current.HallNumber, current.DateString())
    s.cache.Invalidate(ctx, updated.HallNumber, updated.DateString())
    return &updated, nil
}

// RemoveSlot deletes a slot and its roster, then notifies every enrolled
// and waitlisted participant via the cancellation queue.
func (s *Scheduler) RemoveSlot(ctx context.Context, id uint64) error {
    slot, err := s.slots.FindByID(ctx, id)
    if err != nil {
        return err
    }
    deleted, err := s.slots.DeleteByID(ctx, id)
    if err != nil {
        return err
    }
    if !deleted {
        return schedule.ErrSlotNotFound
    }
    s.cache.Invalidate(ctx, slot.HallNumber, slot.DateString())
    if s.events != nil {
        _ = s.events.PublishSlotCancelled(ctx, queue.SlotCancelledEvent{
            SlotID:         slot.ID,
            HallNumber:     slot.HallNumber,
            Date:           slot.DateString(),
            StartTime:      slot.StartTime(),
            EndTime:        slot.EndTime(),
            ParticipantIDs: slot.Roster.Participants,
            WaitlistIDs:    slot.Roster.Waitlist,
            CancelledAt:    s.now().UTC().Format(time.RFC3339),
        })
    }
    return nil
}

// Enroll joins a participant to the slot: a roster seat when one is free,
// the waitlist tail otherwise.  The read-modify-write runs under the
// repository's version CAS and is retried on conflict, so two concurrent
// joins can never both take the last seat.
func (s *Scheduler) Enroll(ctx context.Context, slotID, participantID uint64) (schedule.EnrollmentState, error) {
    for attempt := 0; attempt < casRetries; attempt++ {
        slot, err := s.slots.FindByID(ctx, slotID)
        if err != nil {
            return schedule.NotEnrolled, err
        }
        state, err := slot.Roster.Join(participantID, slot.Capacity)
        if err != nil {
            return state, err
        }
        if err := s.slots.Save(ctx, slot); err != nil {
            if errors.Is(err, schedule.ErrConcurrentModification) {
                continue
            }
            return schedule.NotEnrolled, err
        }
        s.cache.Invalidate(ctx, slot.HallNumber, slot.DateString())
        action := queue.ActionEnrolled
        if state == schedule.Waitlisted {
            action = queue.ActionWaitlisted
        }
        s.publishEnrollment(ctx, slot, participantID, action)
        return state, nil
    }
    return schedule.NotEnrolled, schedule.ErrConcurrentModification
}

// Withdraw removes a participant from the slot's roster or waitlist.  When
// a roster seat frees up the waitlist head is promoted, and both the
// withdrawal and the promotion are published.
func (s *Scheduler) Withdraw(ctx context.Context, slotID, participantID uint64) error {
    for attempt := 0; attempt < casRetries; attempt++ {
        slot, err := s.slots.FindByID(ctx, slotID)
        if err != nil {
            return err
        }
        promoted, err := slot.Roster.Leave(participantID)
        if err != nil {
            return err
        }
        if err := s.slots.Save(ctx, slot); err != nil {
            if errors.Is(err, schedule.ErrConcurrentModification) {
                continue
            }
            return err
        }
        s.cache.Invalidate(ctx, slot.HallNumber, slot.DateString())
        s.publishEnrollment(ctx, slot, participantID, queue.ActionWithdrawn)
        if promoted != 0 {
            s.publishEnrollment(ctx, slot, promoted, queue.ActionPromoted)
        }
        return nil
    }
    return schedule.ErrConcurrentModification
}

// GetSlot loads a single slot with its roster.
func (s *Scheduler) GetSlot(ctx context.Context, id uint64) (*schedule.Slot, error) {
    return s.slots.FindByID(ctx, id)
}

// HallSchedule lists the live slots of a hall on a date, cache-aside: a
// Redis hit skips the repository entirely, a miss loads and back-fills.
func (s *Scheduler) HallSchedule(ctx context.Context, hallNumber int, date time.Time) ([]schedule.Slot, error) {
    day := date.Format(schedule.DateLayout)
    var cached []schedule.Slot
    if s.cache.Get(ctx, hallNumber, day, &cached) {
        return cached, nil
    }
    slots, err := s.slots.FindByHallAndDate(ctx, hallNumber, date)
    if err != nil {
        return nil, err
    }
    s.cache.Set(ctx, hallNumber, day, slots)
    return slots, nil
}

// ParticipantSchedule lists the upcoming slots the participant holds a
// roster seat or waitlist place in, starting from today.
func (s *Scheduler) ParticipantSchedule(ctx context.Context, participantID uint64) ([]schedule.Slot, error) {
    return s.slots.FindByParticipant(ctx, participantID, s.now().UTC())
}

func (s *Scheduler) publishEnrollment(ctx context.Context, slot *schedule.Slot, participantID uint64, action string) {
    if s.events == nil {
        return
    }
    if err := s.events.PublishEnrollment(ctx, queue.EnrollmentEvent{
        SlotID:        slot.ID,
        ParticipantID: participantID,
        Action:        action,
        HallNumber:    slot.HallNumber,
        Date:          slot.DateString(),
        StartTime:     slot.StartTime(),
        EndTime:       slot.EndTime(),
        OccurredAt:    s.now().UTC().Format(time.RFC3339),
    }); err != nil {
        log.Printf("scheduler: publish %s event for slot %d failed: %v", action, slot.ID, err)
    }
}
