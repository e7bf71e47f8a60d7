package routes

import (
	"github.com/arnold/civic-tasks-api/internal/handlers"
	"github.com/arnold/civic-tasks-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Static("/uploads", h.Config.UploadDir)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	api.Get("/neighborhoods", h.GetNeighborhoods)

	protected := api.Group("/", middleware.Protected(h.Config.JWTSecret))
	operator := middleware.RequireOperator()

	protected.Get("/me", h.GetMe)

	// Tasks
	tasks := protected.Group("/tasks")
	tasks.Get("/", h.GetTasks)
	tasks.Post("/submit", h.SubmitTask)
	tasks.Post("/from-template", operator, h.CreateTaskFromTemplate)
	tasks.Post("/", operator, h.CreateTask)
	tasks.Post("/:id/assign", h.AssignTask)
	tasks.Post("/:id/deactivate", operator, h.DeactivateTask)

	// Operator review queue
	submissions := protected.Group("/submissions", operator)
	submissions.Get("/pending", h.GetPendingSubmissions)
	submissions.Post("/:id/review", h.ReviewSubmission)

	templates := protected.Group("/templates", operator)
	templates.Get("/", h.GetTemplates)
	templates.Get("/:id", h.GetTemplate)
	templates.Post("/", h.CreateTemplate)

	// Leaderboard
	protected.Get("/neighborhood/ranking", h.GetRanking)
	protected.Get("/neighborhoods/:id/score", h.GetNeighborhoodScore)

	protected.Get("/badges", h.GetBadges)
	protected.Post("/badges", operator, h.CreateBadge)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", h.GetNotifications)
	notifications.Put("/preferences", h.UpdatePreferences)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)
	notifications.Post("/broadcast", operator, h.Broadcast)

	protected.Post("/uploads/proof-photo", h.UploadProofPhoto)

	// Device token for push notifications
	protected.Post("/device-token", h.RegisterDeviceToken)

	protected.Post("/admin/jobs/expiry-sweep", operator, h.RunExpirySweep)
}
