package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gymflow/training-service/internal/schedule"
    "github.com/gymflow/training-service/internal/service"
)

// ScheduleHandler serves the read-only hall schedule.  Rosters are not
// exposed here, only counts.
type ScheduleHandler struct {
    Scheduler *service.Scheduler
}

func NewScheduleHandler(s *service.Scheduler) *ScheduleHandler {
    if s == nil {
        panic("nil scheduler passed to NewScheduleHandler")
    }
    return &ScheduleHandler{Scheduler: s}
}

// HallSchedule handles GET /v1/halls/:hall/schedule?date=YYYY-MM-DD.
func (h *ScheduleHandler) HallSchedule(c echo.Context) error {
    hall, err := strconv.Atoi(c.Param("hall"))
    if err != nil || hall <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall number"})
    }
    raw := c.QueryParam("date")
    if raw == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required"})
    }
    date, err := time.Parse(schedule.DateLayout, raw)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }
    slots, err := h.Scheduler.HallSchedule(c.Request().Context(), hall, date)
    if err != nil {
        return writeScheduleError(c, err)
    }
    views := make([]slotView, 0, len(slots))
    for i := range slots {
        views = append(views, viewOf(&slots[i], false))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "hall_number": hall,
        "date":        raw,
        "trainings":   views,
    })
}
