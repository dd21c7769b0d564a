package main

import (
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/gymflow/training-service/internal/cache"
    "github.com/gymflow/training-service/internal/config"
    "github.com/gymflow/training-service/internal/database"
    "github.com/gymflow/training-service/internal/handler"
    "github.com/gymflow/training-service/internal/middleware"
    "github.com/gymflow/training-service/internal/queue"
    "github.com/gymflow/training-service/internal/repository"
    "github.com/gymflow/training-service/internal/router"
    "github.com/gymflow/training-service/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient() // nil when Redis is unreachable; callers degrade
    scheduleCache := cache.NewScheduleCache(rdb, 30*time.Second)

    slots := repository.NewSlotRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    publisher := queue.NewPublisher(cfg.AMQPURL)
    go queue.StartNotificationConsumer(cfg.AMQPURL)

    scheduler := service.NewScheduler(slots, publisher, scheduleCache)

    var rateLimit echo.MiddlewareFunc
    rlCfg := config.LoadRateLimitConfig()
    if rlCfg.Enabled && rdb != nil {
        rateLimit = middleware.NewTokenBucket(rlCfg, rdb)
    }

    e := echo.New()
    e.HideBanner = true
    router.Register(e, router.Handlers{
        Auth:     handler.NewAuthHandler(cfg, users, tokens),
        Trainer:  handler.NewTrainerHandler(scheduler),
        Member:   handler.NewMemberHandler(scheduler),
        Schedule: handler.NewScheduleHandler(scheduler),
    }, cfg.JWTSecret, rateLimit)

    addr := ":" + cfg.Port
    log.Printf("training service listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
