package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"

	"github.com/arnold/goalforge-api/internal/handlers"
	"github.com/arnold/goalforge-api/internal/middleware"
)

func Setup(app *fiber.App, h *handlers.Handler) {
	app.Get("/healthz", handlers.Health)
	if m := h.Metrics(); m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	protected := api.Group("/", middleware.Protected(h.Verifier()))

	protected.Get("/me", h.GetMe)
	protected.Put("/me", h.UpdateProfile)
	protected.Get("/dashboard", h.GetDashboard)
	protected.Get("/journal", h.GetJournal)

	goals := protected.Group("/goals")
	goals.Get("/", h.GetGoals)
	goals.Post("/", h.CreateGoal)
	goals.Get("/:id", h.GetGoal)
	goals.Put("/:id", h.UpdateGoal)
	goals.Delete("/:id", h.DeleteGoal)
	goals.Put("/:id/progress", h.UpdateGoalProgress)
	goals.Post("/:id/event", h.CreateGoalEvent)

	tasks := protected.Group("/tasks")
	tasks.Get("/", h.GetTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Put("/:id/status", h.UpdateTaskStatus)
	tasks.Post("/:id/subtasks", h.AddSubtask)
	tasks.Put("/:id/subtasks/:subtaskId", h.ToggleSubtask)
	tasks.Post("/:id/event", h.CreateTaskEvent)

	events := protected.Group("/events")
	events.Get("/", h.GetEvents)
	events.Post("/", h.CreateEvent)
	events.Get("/:id", h.GetEvent)
	events.Put("/:id", h.UpdateEvent)
	events.Delete("/:id", h.DeleteEvent)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", h.GetNotifications)
	notifications.Get("/unread-count", h.GetUnreadCount)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)
	notifications.Delete("/:id", h.DeleteNotification)

	// Device token for push notifications
	protected.Post("/device-token", h.RegisterDeviceToken)

	admin := protected.Group("/admin")
	admin.Get("/users", h.GetUsers)
	admin.Put("/users/:id/role", h.SetUserRole)

	// WebSocket for live collection updates
	app.Get("/ws/:kind", h.WebSocketUpgrade(), websocket.New(h.HandleWebSocket))
}
