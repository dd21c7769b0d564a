// Package handler contains the echo HTTP handlers.  Handlers stay thin:
// they parse plain request data, call the scheduling service or the
// repositories, and map the core error taxonomy to HTTP responses.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/gymflow/training-service/internal/schedule"
)

// getUserID extracts the user_id set by the JWT middleware and converts it
// to uint64.  JWT numeric claims decode as float64, so several shapes are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// writeScheduleError maps the scheduling error taxonomy onto HTTP
// responses.  Unknown errors become 500 without leaking detail.
func writeScheduleError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, schedule.ErrInvalidSlot):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, schedule.ErrPastDate):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.Is(err, schedule.ErrSlotConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, schedule.ErrSlotNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "training not found"})
    case errors.Is(err, schedule.ErrAlreadyEnrolled):
        return c.JSON(http.StatusConflict, echo.Map{"error": "already enrolled"})
    case errors.Is(err, schedule.ErrNotEnrolled):
        return c.JSON(http.StatusConflict, echo.Map{"error": "not enrolled"})
    case errors.Is(err, schedule.ErrConcurrentModification):
        // The one retryable condition: re-running the request re-reads state.
        return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent update, retry", "retryable": true})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

// slotView is the JSON shape for a training slot.  Participant ids are
// only included where the caller is allowed to see them.
type slotView struct {
    ID             uint64   `json:"id"`
    TrainingTypeID uint64   `json:"training_type_id"`
    TrainerIDs     []uint64 `json:"trainer_ids"`
    Date           string   `json:"date"`
    StartTime      string   `json:"start_time"`
    EndTime        string   `json:"end_time"`
    HallNumber     int      `json:"hall_number"`
    Capacity       int      `json:"capacity"`
    EnrolledCount  int      `json:"enrolled_count"`
    WaitlistCount  int      `json:"waitlist_count"`
    SlotsLeft      int      `json:"slots_left"`
    Participants   []uint64 `json:"participants,omitempty"`
    Waitlist       []uint64 `json:"waitlist,omitempty"`
}

func viewOf(s *schedule.Slot, withRoster bool) slotView {
    v := slotView{
        ID:             s.ID,
        TrainingTypeID: s.TrainingTypeID,
        TrainerIDs:     s.TrainerIDs,
        Date:           s.DateString(),
        StartTime:      s.StartTime(),
        EndTime:        s.EndTime(),
        HallNumber:     s.HallNumber,
        Capacity:       s.Capacity,
        EnrolledCount:  len(s.Roster.Participants),
        WaitlistCount:  len(s.Roster.Waitlist),
        SlotsLeft:      s.Capacity - len(s.Roster.Participants),
    }
    if withRoster {
        v.Participants = s.Roster.Participants
        v.Waitlist = s.Roster.Waitlist
    }
    return v
}
