package schedule

import (
    "errors"
    "testing"
    "time"
)

func validRequest() SlotRequest {
    return SlotRequest{
        TrainingTypeID: 3,
        TrainerIDs:     []uint64{7},
        Date:           "2024-06-01",
        StartTime:      "10:00",
        EndTime:        "11:00",
        HallNumber:     1,
        Capacity:       12,
    }
}

func TestValidateShapeAccepts(t *testing.T) {
    slot, err := ValidateShape(validRequest())
    if err != nil {
        t.Fatalf("ValidateShape() error = %v, want nil", err)
    }
    if slot.StartMin != 600 || slot.EndMin != 660 {
        t.Errorf("parsed interval = [%d, %d), want [600, 660)", slot.StartMin, slot.EndMin)
    }
    if slot.DurationMinutes() != 60 {
        t.Errorf("DurationMinutes() = %d, want 60", slot.DurationMinutes())
    }
    if got := slot.Date.Format(DateLayout); got != "2024-06-01" {
        t.Errorf("date = %s, want 2024-06-01", got)
    }
    if slot.StartTime() != "10:00" || slot.EndTime() != "11:00" {
        t.Errorf("round-trip times = %s-%s, want 10:00-11:00", slot.StartTime(), slot.EndTime())
    }
}

func TestValidateShapeRejects(t *testing.T) {
    cases := []struct {
        name   string
        mutate func(*SlotRequest)
    }{
        {"missing training type", func(r *SlotRequest) { r.TrainingTypeID = 0 }},
        {"no trainers", func(r *SlotRequest) { r.TrainerIDs = nil }},
        {"zero trainer id", func(r *SlotRequest) { r.TrainerIDs = []uint64{0} }},
        {"hall zero", func(r *SlotRequest) { r.HallNumber = 0 }},
        {"hall negative", func(r *SlotRequest) { r.HallNumber = -2 }},
        {"capacity zero", func(r *SlotRequest) { r.Capacity = 0 }},
        {"empty date", func(r *SlotRequest) { r.Date = "" }},
        {"bad date syntax", func(r *SlotRequest) { r.Date = "01.06.2024" }},
        {"empty start", func(r *SlotRequest) { r.StartTime = "" }},
        {"bad time syntax", func(r *SlotRequest) { r.StartTime = "10am" }},
        {"zero duration", func(r *SlotRequest) { r.EndTime = r.StartTime }},
        {"negative duration", func(r *SlotRequest) { r.StartTime = "12:00"; r.EndTime = "11:00" }},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            req := validRequest()
            tc.mutate(&req)
            if _, err := ValidateShape(req); !errors.Is(err, ErrInvalidSlot) {
                t.Errorf("ValidateShape() error = %v, want ErrInvalidSlot", err)
            }
        })
    }
}

func TestIsPastDate(t *testing.T) {
    now := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
    day := func(s string) time.Time {
        d, err := time.ParseInLocation(DateLayout, s, time.UTC)
        if err != nil {
            t.Fatalf("bad test date %q: %v", s, err)
        }
        return d
    }

    if !IsPastDate(day("2024-06-01"), now) {
        t.Error("yesterday should be past")
    }
    if IsPastDate(day("2024-06-02"), now) {
        t.Error("today should not be past even after midnight")
    }
    if IsPastDate(day("2024-06-03"), now) {
        t.Error("tomorrow should not be past")
    }
}
