package service

import (
    "context"
    "errors"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/gymflow/training-service/internal/schedule"
)

// fakeSlotRepo is an in-memory SlotRepository with real optimistic
// versioning: Save on a stale version fails with
// schedule.ErrConcurrentModification, exactly like the MySQL CAS.
type fakeSlotRepo struct {
    mu     sync.Mutex
    nextID uint64
    slots  map[uint64]schedule.Slot
}

func newFakeSlotRepo() *fakeSlotRepo {
    return &fakeSlotRepo{nextID: 1, slots: make(map[uint64]schedule.Slot)}
}

func copySlot(s schedule.Slot) schedule.Slot {
    s.TrainerIDs = append([]uint64(nil), s.TrainerIDs...)
    s.Roster.Participants = append([]uint64(nil), s.Roster.Participants...)
    s.Roster.Waitlist = append([]uint64(nil), s.Roster.Waitlist...)
    return s
}

func (r *fakeSlotRepo) FindByID(_ context.Context, id uint64) (*schedule.Slot, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    s, ok := r.slots[id]
    if !ok {
        return nil, schedule.ErrSlotNotFound
    }
    out := copySlot(s)
    return &out, nil
}

func (r *fakeSlotRepo) FindByHallAndDate(_ context.Context, hall int, date time.Time) ([]schedule.Slot, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    var out []schedule.Slot
    for _, s := range r.slots {
        if s.HallNumber == hall && s.Date.Equal(date) {
            out = append(out, copySlot(s))
        }
    }
    return out, nil
}

func (r *fakeSlotRepo) Save(_ context.Context, slot *schedule.Slot) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if slot.ID == 0 {
        slot.ID = r.nextID
        r.nextID++
        slot.Version = 1
        r.slots[slot.ID] = copySlot(*slot)
        return nil
    }
    stored, ok := r.slots[slot.ID]
    if !ok {
        return schedule.ErrSlotNotFound
    }
    if stored.Version != slot.Version {
        return schedule.ErrConcurrentModification
    }
    slot.Version++
    r.slots[slot.ID] = copySlot(*slot)
    return nil
}

func (r *fakeSlotRepo) DeleteByID(_ context.Context, id uint64) (bool, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, ok := r.slots[id]; !ok {
        return false, nil
    }
    delete(r.slots, id)
    return true, nil
}

func (r *fakeSlotRepo) FindByParticipant(_ context.Context, participantID uint64, from time.Time) ([]schedule.Slot, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    day := from.Format(schedule.DateLayout)
    var out []schedule.Slot
    for _, s := range r.slots {
        if s.DateString() < day {
            continue
        }
        if s.Roster.StateOf(participantID) != schedule.NotEnrolled {
            out = append(out, copySlot(s))
        }
    }
    return out, nil
}

func newTestScheduler(repo *fakeSlotRepo, now time.Time) *Scheduler {
    s := NewScheduler(repo, nil, nil)
    s.now = func() time.Time { return now }
    return s
}

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func request(date, start, end string, hall, capacity int) schedule.SlotRequest {
    return schedule.SlotRequest{
        TrainingTypeID: 1,
        TrainerIDs:     []uint64{9},
        Date:           date,
        StartTime:      start,
        EndTime:        end,
        HallNumber:     hall,
        Capacity:       capacity,
    }
}

func TestCreateSlot(t *testing.T) {
    sched := newTestScheduler(newFakeSlotRepo(), testNow)
    ctx := context.Background()

    slot, err := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 10))
    if err != nil {
        t.Fatalf("CreateSlot() error = %v", err)
    }
    if slot.ID == 0 {
        t.Error("created slot has no id")
    }
    if slot.Version != 1 {
        t.Errorf("created slot version = %d, want 1", slot.Version)
    }
}

func TestCreateSlotRejectsPastDate(t *testing.T) {
    sched := newTestScheduler(newFakeSlotRepo(), testNow)

    _, err := sched.CreateSlot(context.Background(), request("2024-05-19", "10:00", "11:00", 1, 10))
    if !errors.Is(err, schedule.ErrPastDate) {
        t.Errorf("CreateSlot(yesterday) error = %v, want ErrPastDate", err)
    }
}

func TestCreateSlotRejectsInvalidShape(t *testing.T) {
    sched := newTestScheduler(newFakeSlotRepo(), testNow)

    _, err := sched.CreateSlot(context.Background(), request("2024-06-01", "11:00", "10:00", 1, 10))
    if !errors.Is(err, schedule.ErrInvalidSlot) {
        t.Errorf("CreateSlot(inverted times) error = %v, want ErrInvalidSlot", err)
    }
}

// Existing slot 2024-06-01 10:00-11:00 hall 1: the 10:30-11:30 request for
// hall 1 conflicts, the same request for hall 2 succeeds.
func TestCreateSlotHallConflict(t *testing.T) {
    sched := newTestScheduler(newFakeSlotRepo(), testNow)
    ctx := context.Background()

    if _, err := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 10)); err != nil {
        t.Fatalf("seed CreateSlot() error = %v", err)
    }
    if _, err := sched.CreateSlot(ctx, request("2024-06-01", "10:30", "11:30", 1, 10)); !errors.Is(err, schedule.ErrSlotConflict) {
        t.Errorf("overlapping same hall error = %v, want ErrSlotConflict", err)
    }
    if _, err := sched.CreateSlot(ctx, request("2024-06-01", "10:30", "11:30", 2, 10)); err != nil {
        t.Errorf("same time other hall error = %v, want nil", err)
    }
    if _, err := sched.CreateSlot(ctx, request("2024-06-01", "11:00", "12:00", 1, 10)); err != nil {
        t.Errorf("back-to-back same hall error = %v, want nil", err)
    }
}

func TestUpdateSlot(t *testing.T) {
    repo := newFakeSlotRepo()
    sched := newTestScheduler(repo, testNow)
    ctx := context.Background()

    a, err := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 10))
    if err != nil {
        t.Fatalf("CreateSlot() error = %v", err)
    }
    if _, err := sched.CreateSlot(ctx, request("2024-06-01", "12:00", "13:00", 1, 10)); err != nil {
        t.Fatalf("CreateSlot() error = %v", err)
    }

    // Rescheduling within its own old window must not conflict with itself.
    moved, err := sched.UpdateSlot(ctx, a.ID, request("2024-06-01", "10:15", "10:45", 1, 10))
    if err != nil {
        t.Fatalf("UpdateSlot(self window) error = %v", err)
    }
    if moved.StartTime() != "10:15" {
        t.Errorf("updated start = %s, want 10:15", moved.StartTime())
    }

    // But overlapping the other slot is still rejected.
    if _, err := sched.UpdateSlot(ctx, a.ID, request("2024-06-01", "12:30", "13:30", 1, 10)); !errors.Is(err, schedule.ErrSlotConflict) {
        t.Errorf("UpdateSlot(overlap other) error = %v, want ErrSlotConflict", err)
    }

    if _, err := sched.UpdateSlot(ctx, 999, request("2024-06-01", "08:00", "09:00", 1, 10)); !errors.Is(err, schedule.ErrSlotNotFound) {
        t.Errorf("UpdateSlot(unknown) error = %v, want ErrSlotNotFound", err)
    }
}

func TestUpdateSlotKeepsRosterAndBoundsCapacity(t *testing.T) {
    repo := newFakeSlotRepo()
    sched := newTestScheduler(repo, testNow)
    ctx := context.Background()

    slot, _ := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 3))
    for _, pid := range []uint64{11, 12} {
        if _, err := sched.Enroll(ctx, slot.ID, pid); err != nil {
            t.Fatalf("Enroll(%d) error = %v", pid, err)
        }
    }

    updated, err := sched.UpdateSlot(ctx, slot.ID, request("2024-06-01", "10:00", "11:00", 1, 2))
    if err != nil {
        t.Fatalf("UpdateSlot(shrink to roster size) error = %v", err)
    }
    if got := updated.Roster.Participants; len(got) != 2 {
        t.Errorf("roster after update = %v, want both participants kept", got)
    }

    if _, err := sched.UpdateSlot(ctx, slot.ID, request("2024-06-01", "10:00", "11:00", 1, 1)); !errors.Is(err, schedule.ErrInvalidSlot) {
        t.Errorf("UpdateSlot(capacity below roster) error = %v, want ErrInvalidSlot", err)
    }
}

func TestRemoveSlot(t *testing.T) {
    repo := newFakeSlotRepo()
    sched := newTestScheduler(repo, testNow)
    ctx := context.Background()

    slot, _ := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 10))
    if err := sched.RemoveSlot(ctx, slot.ID); err != nil {
        t.Fatalf("RemoveSlot() error = %v", err)
    }
    if _, err := sched.GetSlot(ctx, slot.ID); !errors.Is(err, schedule.ErrSlotNotFound) {
        t.Errorf("GetSlot(removed) error = %v, want ErrSlotNotFound", err)
    }
    if err := sched.RemoveSlot(ctx, slot.ID); !errors.Is(err, schedule.ErrSlotNotFound) {
        t.Errorf("RemoveSlot(twice) error = %v, want ErrSlotNotFound", err)
    }
}

// Capacity 1: A enrolls, B waitlists, A withdraws and B takes the seat.
func TestEnrollWithdrawPromotion(t *testing.T) {
    repo := newFakeSlotRepo()
    sched := newTestScheduler(repo, testNow)
    ctx := context.Background()

    slot, _ := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 1))

    state, err := sched.Enroll(ctx, slot.ID, 100) // A
    if err != nil || state != schedule.Enrolled {
        t.Fatalf("Enroll(A) = %s, %v, want ENROLLED", state, err)
    }
    state, err = sched.Enroll(ctx, slot.ID, 200) // B
    if err != nil || state != schedule.Waitlisted {
        t.Fatalf("Enroll(B) = %s, %v, want WAITLISTED", state, err)
    }
    if _, err := sched.Enroll(ctx, slot.ID, 200); !errors.Is(err, schedule.ErrAlreadyEnrolled) {
        t.Errorf("Enroll(B twice) error = %v, want ErrAlreadyEnrolled", err)
    }

    if err := sched.Withdraw(ctx, slot.ID, 100); err != nil {
        t.Fatalf("Withdraw(A) error = %v", err)
    }
    after, err := sched.GetSlot(ctx, slot.ID)
    if err != nil {
        t.Fatalf("GetSlot() error = %v", err)
    }
    if got := after.Roster.Participants; len(got) != 1 || got[0] != 200 {
        t.Errorf("roster = %v, want [200]", got)
    }
    if len(after.Roster.Waitlist) != 0 {
        t.Errorf("waitlist = %v, want empty", after.Roster.Waitlist)
    }

    if err := sched.Withdraw(ctx, slot.ID, 100); !errors.Is(err, schedule.ErrNotEnrolled) {
        t.Errorf("Withdraw(A twice) error = %v, want ErrNotEnrolled", err)
    }
    if _, err := sched.Enroll(ctx, 999, 100); !errors.Is(err, schedule.ErrSlotNotFound) {
        t.Errorf("Enroll(unknown slot) error = %v, want ErrSlotNotFound", err)
    }
}

// Many goroutines fight for a small roster; the version CAS must hand out
// exactly capacity seats and waitlist everyone else, no matter how the
// writes interleave.
func TestEnrollConcurrencyNeverOverbooks(t *testing.T) {
    repo := newFakeSlotRepo()
    sched := newTestScheduler(repo, testNow)
    ctx := context.Background()

    const capacity = 5
    const joiners = 100

    slot, err := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, capacity))
    if err != nil {
        t.Fatalf("CreateSlot() error = %v", err)
    }

    var enrolled, waitlisted int32
    var wg sync.WaitGroup
    wg.Add(joiners)
    for i := 0; i < joiners; i++ {
        go func(pid uint64) {
            defer wg.Done()
            for {
                state, err := sched.Enroll(ctx, slot.ID, pid)
                if errors.Is(err, schedule.ErrConcurrentModification) {
                    continue // retryable by contract; re-reads current state
                }
                if err != nil {
                    t.Errorf("Enroll(%d) unexpected error: %v", pid, err)
                    return
                }
                switch state {
                case schedule.Enrolled:
                    atomic.AddInt32(&enrolled, 1)
                case schedule.Waitlisted:
                    atomic.AddInt32(&waitlisted, 1)
                }
                return
            }
        }(uint64(i + 1))
    }
    wg.Wait()

    if enrolled != capacity {
        t.Errorf("enrolled = %d, want exactly %d", enrolled, capacity)
    }
    if waitlisted != joiners-capacity {
        t.Errorf("waitlisted = %d, want %d", waitlisted, joiners-capacity)
    }

    final, err := sched.GetSlot(ctx, slot.ID)
    if err != nil {
        t.Fatalf("GetSlot() error = %v", err)
    }
    if len(final.Roster.Participants) != capacity {
        t.Errorf("persisted roster size = %d, want %d", len(final.Roster.Participants), capacity)
    }
    if len(final.Roster.Waitlist) != joiners-capacity {
        t.Errorf("persisted waitlist size = %d, want %d", len(final.Roster.Waitlist), joiners-capacity)
    }
}

func TestParticipantSchedule(t *testing.T) {
    repo := newFakeSlotRepo()
    sched := newTestScheduler(repo, testNow)
    ctx := context.Background()

    a, _ := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 1))
    b, _ := sched.CreateSlot(ctx, request("2024-06-02", "10:00", "11:00", 1, 1))
    if _, err := sched.Enroll(ctx, a.ID, 7); err != nil {
        t.Fatalf("Enroll() error = %v", err)
    }
    if _, err := sched.Enroll(ctx, b.ID, 8); err != nil {
        t.Fatalf("Enroll() error = %v", err)
    }
    if _, err := sched.Enroll(ctx, b.ID, 7); err != nil { // full, waitlists
        t.Fatalf("Enroll() error = %v", err)
    }

    mine, err := sched.ParticipantSchedule(ctx, 7)
    if err != nil {
        t.Fatalf("ParticipantSchedule() error = %v", err)
    }
    if len(mine) != 2 {
        t.Fatalf("ParticipantSchedule() returned %d slots, want 2", len(mine))
    }
    states := map[uint64]schedule.EnrollmentState{}
    for i := range mine {
        states[mine[i].ID] = mine[i].Roster.StateOf(7)
    }
    if states[a.ID] != schedule.Enrolled {
        t.Errorf("state in slot A = %s, want ENROLLED", states[a.ID])
    }
    if states[b.ID] != schedule.Waitlisted {
        t.Errorf("state in slot B = %s, want WAITLISTED", states[b.ID])
    }
}

func TestHallSchedule(t *testing.T) {
    repo := newFakeSlotRepo()
    sched := newTestScheduler(repo, testNow)
    ctx := context.Background()

    if _, err := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 1, 10)); err != nil {
        t.Fatalf("CreateSlot() error = %v", err)
    }
    if _, err := sched.CreateSlot(ctx, request("2024-06-01", "10:00", "11:00", 2, 10)); err != nil {
        t.Fatalf("CreateSlot() error = %v", err)
    }

    day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
    slots, err := sched.HallSchedule(ctx, 1, day)
    if err != nil {
        t.Fatalf("HallSchedule() error = %v", err)
    }
    if len(slots) != 1 || slots[0].HallNumber != 1 {
        t.Errorf("HallSchedule(hall 1) = %v, want the single hall-1 slot", slots)
    }
}
