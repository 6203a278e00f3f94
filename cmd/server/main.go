package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/guardpost/security-patrol/internal/config"
	"github.com/guardpost/security-patrol/internal/database"
	"github.com/guardpost/security-patrol/internal/handler"
	"github.com/guardpost/security-patrol/internal/middleware"
	"github.com/guardpost/security-patrol/internal/queue"
	"github.com/guardpost/security-patrol/internal/repository"
	"github.com/guardpost/security-patrol/internal/router"
	"github.com/guardpost/security-patrol/internal/storage"
)

func main() {
	// .env is optional; in production the variables come from the
	// environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	attendance := repository.NewAttendanceRepo(db)
	incidents := repository.NewIncidentRepo(db)
	attachments := storage.NewAttachmentStore(cfg.UploadDir)

	// Redis is optional: a nil client disables rate limiting and the
	// response cache without blocking startup.
	rdb := config.NewRedisClient()
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Consume incident events in the background; the loop reconnects on
	// broker failure.
	go func() {
		if err := queue.StartIncidentConsumer(); err != nil {
			log.Printf("incident consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(rateLimit)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterAttendance(e, handler.NewAttendanceHandler(attendance), cfg.JWTSecret, cache)
	router.RegisterIncidents(e,
		handler.NewIncidentHandler(incidents, users, attachments),
		handler.NewDashboardHandler(incidents, attendance, users),
		cfg.JWTSecret, cache)
	router.RegisterManager(e, handler.NewGuardHandler(users), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
