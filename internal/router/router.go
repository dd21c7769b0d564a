// Package router wires HTTP routes to their handlers and middleware.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/gymflow/training-service/internal/handler"
    "github.com/gymflow/training-service/internal/middleware"
    "github.com/gymflow/training-service/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
    Auth     *handler.AuthHandler
    Trainer  *handler.TrainerHandler
    Member   *handler.MemberHandler
    Schedule *handler.ScheduleHandler
}

// Register sets up the full route table.
//
//   - /healthz and the hall schedule are public.
//   - /v1/auth hosts register/login/refresh/logout.
//   - everything else under /v1 requires a valid access token; slot
//     mutations additionally require the TRAINER role.
//
// rateLimit is applied to the mutating endpoints; pass nil to disable.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
    e.GET("/healthz", handler.Health)
    e.GET("/v1/halls/:hall/schedule", h.Schedule.HallSchedule)

    auth := e.Group("/v1/auth")
    auth.POST("/register", h.Auth.Register)
    auth.POST("/login", h.Auth.Login)
    auth.POST("/refresh", h.Auth.Refresh)
    auth.POST("/logout", h.Auth.Logout)

    v1 := e.Group("/v1")
    v1.Use(middleware.JWTAuth(jwtSecret))
    v1.Use(middleware.RequireRole(model.RoleMember, model.RoleTrainer))
    v1.GET("/me", h.Auth.Me)
    v1.GET("/trainings/:id", h.Trainer.GetTraining)
    v1.GET("/trainings/:id/enrollment", h.Member.EnrollmentStatus)
    v1.GET("/my-trainings", h.Member.MyTrainings)

    mutating := []echo.MiddlewareFunc{}
    if rateLimit != nil {
        mutating = append(mutating, rateLimit)
    }
    v1.POST("/trainings/:id/enroll", h.Member.Enroll, mutating...)
    v1.DELETE("/trainings/:id/enroll", h.Member.Withdraw, mutating...)

    trainer := e.Group("/v1/trainings")
    trainer.Use(middleware.JWTAuth(jwtSecret))
    trainer.Use(middleware.RequireRole(model.RoleTrainer))
    if rateLimit != nil {
        trainer.Use(rateLimit)
    }
    trainer.POST("", h.Trainer.CreateTraining)
    trainer.PUT("/:id", h.Trainer.UpdateTraining)
    trainer.DELETE("/:id", h.Trainer.DeleteTraining)
}
