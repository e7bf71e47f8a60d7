package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnold/civic-tasks-api/internal/config"
	"github.com/arnold/civic-tasks-api/internal/database"
	"github.com/arnold/civic-tasks-api/internal/handlers"
	"github.com/arnold/civic-tasks-api/internal/metrics"
	"github.com/arnold/civic-tasks-api/internal/middleware"
	"github.com/arnold/civic-tasks-api/internal/routes"
	"github.com/arnold/civic-tasks-api/internal/scheduler"
	"github.com/arnold/civic-tasks-api/internal/services"
	"github.com/arnold/civic-tasks-api/internal/verification"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	sweepOnce := flag.Bool("sweep-once", false, "run the expiry sweep once and exit")
	flag.Parse()

	cfg := config.Load()

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	if err := database.Connect(cfg); err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("Failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Database migrated")
	if *migrateOnly {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	notifier := services.NewNotificationService(database.DB,
		services.NewEmailSender(cfg),
		services.NewPushService(ctx, cfg.FCMServiceAccount))
	notifier.InactivityDays = cfg.InactivityDays
	notifier.RetentionDays = cfg.NotificationRetentionDays

	verifier := verification.NewDispatcher()
	badges := services.NewBadgeService(database.DB)
	leaderboard := services.NewLeaderboardService(database.DB, cfg.RankingCacheTTL)
	tasks := services.NewTaskService(database.DB, verifier, badges, notifier, leaderboard)
	tasks.MaxRejections = cfg.MaxRejections
	templates := services.NewTemplateService(database.DB, verifier, notifier)

	if *sweepOnce {
		res := tasks.ReplaceExpiredTasksForAllUsers(ctx)
		_ = json.NewEncoder(os.Stdout).Encode(res)
		return
	}

	cron := scheduler.NewCron(ctx, time.UTC)
	if err := services.RegisterJobs(cron, cfg, tasks, notifier); err != nil {
		slog.Error("Failed to register jobs", slog.Any("error", err))
		os.Exit(1)
	}
	cron.Start()

	h := &handlers.Handler{
		Config:        cfg,
		DB:            database.DB,
		Tasks:         tasks,
		Templates:     templates,
		Badges:        badges,
		Leaderboard:   leaderboard,
		Notifications: notifier,
	}

	app := fiber.New(fiber.Config{
		AppName: "Civic Tasks API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestLogger())

	routes.Setup(app, h)

	go func() {
		slog.Info("Server starting", slog.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	cron.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.Any("error", err))
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	slog.Info("Shutdown complete")
}
