package schedule

import (
    "testing"
    "time"
)

func slotAt(id uint64, hall int, date string, start, end string) Slot {
    d, _ := time.ParseInLocation(DateLayout, date, time.UTC)
    s, _ := parseClock(start)
    e, _ := parseClock(end)
    return Slot{ID: id, HallNumber: hall, Date: d, StartMin: s, EndMin: e, Capacity: 10}
}

func TestFindOverlapDetects(t *testing.T) {
    existing := []Slot{slotAt(1, 1, "2024-06-01", "10:00", "11:00")}

    cases := []struct {
        name     string
        proposed Slot
    }{
        {"starts during existing", slotAt(0, 1, "2024-06-01", "10:30", "11:30")},
        {"ends during existing", slotAt(0, 1, "2024-06-01", "09:30", "10:30")},
        {"contains existing", slotAt(0, 1, "2024-06-01", "09:00", "12:00")},
        {"contained by existing", slotAt(0, 1, "2024-06-01", "10:15", "10:45")},
        {"identical interval", slotAt(0, 1, "2024-06-01", "10:00", "11:00")},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := FindOverlap(tc.proposed, existing); got == nil {
                t.Error("FindOverlap() = nil, want conflict")
            } else if got.ID != 1 {
                t.Errorf("conflicting slot id = %d, want 1", got.ID)
            }
        })
    }
}

func TestFindOverlapAllowsDisjoint(t *testing.T) {
    existing := []Slot{slotAt(1, 1, "2024-06-01", "10:00", "11:00")}

    cases := []struct {
        name     string
        proposed Slot
    }{
        {"before", slotAt(0, 1, "2024-06-01", "08:00", "09:00")},
        {"after", slotAt(0, 1, "2024-06-01", "12:00", "13:00")},
        {"back-to-back after", slotAt(0, 1, "2024-06-01", "11:00", "12:00")},
        {"back-to-back before", slotAt(0, 1, "2024-06-01", "09:00", "10:00")},
        {"other hall", slotAt(0, 2, "2024-06-01", "10:30", "11:30")},
        {"other date", slotAt(0, 1, "2024-06-02", "10:30", "11:30")},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := FindOverlap(tc.proposed, existing); got != nil {
                t.Errorf("FindOverlap() = slot %d, want nil", got.ID)
            }
        })
    }
}

func TestFindOverlapExcludesSelfOnUpdate(t *testing.T) {
    existing := []Slot{
        slotAt(5, 1, "2024-06-01", "10:00", "11:00"),
        slotAt(6, 1, "2024-06-01", "12:00", "13:00"),
    }
    // Slot 5 being rescheduled within its own old window must not conflict
    // with itself, but still conflicts with slot 6.
    moved := slotAt(5, 1, "2024-06-01", "10:30", "12:30")
    got := FindOverlap(moved, existing)
    if got == nil || got.ID != 6 {
        t.Fatalf("FindOverlap() = %v, want conflict with slot 6", got)
    }

    shrunk := slotAt(5, 1, "2024-06-01", "10:15", "10:45")
    if got := FindOverlap(shrunk, existing); got != nil {
        t.Errorf("FindOverlap() = slot %d, want nil (self excluded)", got.ID)
    }
}
