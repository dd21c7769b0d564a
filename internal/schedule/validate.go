package schedule

import (
    "fmt"
    "time"
)

// ValidateShape checks a slot request for well-formedness and returns the
// parsed Slot on success.  Every failure wraps ErrInvalidSlot with the
// offending field so callers can report it.  Shape validation says nothing
// about the calendar: retroactive dates are IsPastDate's job and hall
// conflicts belong to FindOverlap.
func ValidateShape(req SlotRequest) (Slot, error) {
    if req.TrainingTypeID == 0 {
        return Slot{}, fmt.Errorf("%w: training_type_id is required", ErrInvalidSlot)
    }
    if len(req.TrainerIDs) == 0 {
        return Slot{}, fmt.Errorf("%w: at least one trainer is required", ErrInvalidSlot)
    }
    for _, id := range req.TrainerIDs {
        if id == 0 {
            return Slot{}, fmt.Errorf("%w: trainer id must be positive", ErrInvalidSlot)
        }
    }
    if req.HallNumber <= 0 {
        return Slot{}, fmt.Errorf("%w: hall_number must be positive", ErrInvalidSlot)
    }
    if req.Capacity <= 0 {
        return Slot{}, fmt.Errorf("%w: capacity must be positive", ErrInvalidSlot)
    }
    if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
        return Slot{}, fmt.Errorf("%w: date, start_time and end_time are required", ErrInvalidSlot)
    }

    date, err := time.ParseInLocation(DateLayout, req.Date, time.UTC)
    if err != nil {
        return Slot{}, fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", ErrInvalidSlot, req.Date)
    }
    startMin, err := parseClock(req.StartTime)
    if err != nil {
        return Slot{}, fmt.Errorf("%w: bad start_time %q, want HH:MM", ErrInvalidSlot, req.StartTime)
    }
    endMin, err := parseClock(req.EndTime)
    if err != nil {
        return Slot{}, fmt.Errorf("%w: bad end_time %q, want HH:MM", ErrInvalidSlot, req.EndTime)
    }
    if endMin-startMin <= 0 {
        return Slot{}, fmt.Errorf("%w: end_time must be after start_time", ErrInvalidSlot)
    }

    return Slot{
        TrainingTypeID: req.TrainingTypeID,
        TrainerIDs:     append([]uint64(nil), req.TrainerIDs...),
        Date:           date,
        StartMin:       startMin,
        EndMin:         endMin,
        HallNumber:     req.HallNumber,
        Capacity:       req.Capacity,
    }, nil
}

// IsPastDate reports whether date falls strictly before the calendar date of
// now.  Comparison is at day granularity in UTC: a slot later today is never
// past, whatever the wall clock says.
func IsPastDate(date, now time.Time) bool {
    today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
    return date.Before(today)
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
    t, err := time.Parse(TimeLayout, s)
    if err != nil {
        return 0, err
    }
    return t.Hour()*60 + t.Minute(), nil
}
