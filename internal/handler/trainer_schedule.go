package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/gymflow/training-service/internal/schedule"
    "github.com/gymflow/training-service/internal/service"
)

// TrainerHandler exposes slot management to trainers.  JWT and role
// middleware run before every method; the scheduling service owns all
// validation and conflict decisions.
type TrainerHandler struct {
    Scheduler *service.Scheduler
}

func NewTrainerHandler(s *service.Scheduler) *TrainerHandler {
    if s == nil {
        panic("nil scheduler passed to NewTrainerHandler")
    }
    return &TrainerHandler{Scheduler: s}
}

// CreateTraining handles POST /v1/trainings.
func (h *TrainerHandler) CreateTraining(c echo.Context) error {
    var req schedule.SlotRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    slot, err := h.Scheduler.CreateSlot(c.Request().Context(), req)
    if err != nil {
        return writeScheduleError(c, err)
    }
    return c.JSON(http.StatusCreated, viewOf(slot, true))
}

// UpdateTraining handles PUT /v1/trainings/:id.
func (h *TrainerHandler) UpdateTraining(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid training id"})
    }
    var req schedule.SlotRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    slot, err := h.Scheduler.UpdateSlot(c.Request().Context(), id, req)
    if err != nil {
        return writeScheduleError(c, err)
    }
    return c.JSON(http.StatusOK, viewOf(slot, true))
}

// DeleteTraining handles DELETE /v1/trainings/:id.
func (h *TrainerHandler) DeleteTraining(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid training id"})
    }
    if err := h.Scheduler.RemoveSlot(c.Request().Context(), id); err != nil {
        return writeScheduleError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// GetTraining handles GET /v1/trainings/:id with the full roster visible.
func (h *TrainerHandler) GetTraining(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid training id"})
    }
    slot, err := h.Scheduler.GetSlot(c.Request().Context(), id)
    if err != nil {
        return writeScheduleError(c, err)
    }
    return c.JSON(http.StatusOK, viewOf(slot, true))
}
