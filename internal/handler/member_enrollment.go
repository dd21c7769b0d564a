package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/gymflow/training-service/internal/schedule"
    "github.com/gymflow/training-service/internal/service"
)

// MemberHandler exposes enrollment to authenticated members (and trainers
// joining sessions themselves).  The participant id always comes from the
// JWT, never from the request body.
type MemberHandler struct {
    Scheduler *service.Scheduler
}

func NewMemberHandler(s *service.Scheduler) *MemberHandler {
    if s == nil {
        panic("nil scheduler passed to NewMemberHandler")
    }
    return &MemberHandler{Scheduler: s}
}

// Enroll handles POST /v1/trainings/:id/enroll.  A free roster seat yields
// 201 with state ENROLLED; a full roster yields 201 with state WAITLISTED
// and the current queue position.
func (h *MemberHandler) Enroll(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || slotID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid training id"})
    }
    state, err := h.Scheduler.Enroll(c.Request().Context(), slotID, userID)
    if err != nil {
        return writeScheduleError(c, err)
    }
    resp := echo.Map{"training_id": slotID, "state": state}
    if state == schedule.Waitlisted {
        if slot, err := h.Scheduler.GetSlot(c.Request().Context(), slotID); err == nil {
            for i, pid := range slot.Roster.Waitlist {
                if pid == userID {
                    resp["waitlist_position"] = i + 1
                    break
                }
            }
        }
    }
    return c.JSON(http.StatusCreated, resp)
}

// Withdraw handles DELETE /v1/trainings/:id/enroll.
func (h *MemberHandler) Withdraw(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || slotID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid training id"})
    }
    if err := h.Scheduler.Withdraw(c.Request().Context(), slotID, userID); err != nil {
        return writeScheduleError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// MyTrainings handles GET /v1/my-trainings: the caller's upcoming slots
// with their own state attached.
func (h *MemberHandler) MyTrainings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slots, err := h.Scheduler.ParticipantSchedule(c.Request().Context(), userID)
    if err != nil {
        return writeScheduleError(c, err)
    }
    out := make([]echo.Map, 0, len(slots))
    for i := range slots {
        out = append(out, echo.Map{
            "training": viewOf(&slots[i], false),
            "state":    slots[i].Roster.StateOf(userID),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"trainings": out})
}

// EnrollmentStatus handles GET /v1/trainings/:id/enrollment and reports
// the caller's state for the slot.
func (h *MemberHandler) EnrollmentStatus(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || slotID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid training id"})
    }
    slot, err := h.Scheduler.GetSlot(c.Request().Context(), slotID)
    if err != nil {
        return writeScheduleError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "training_id": slotID,
        "state":       slot.Roster.StateOf(userID),
    })
}
