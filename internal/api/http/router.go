package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AdminUsers     *handlers.AdminUsersHandler
	Notifications  *handlers.NotificationsHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
	Limiter        *ratelimit.Limiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Limiter.Middleware("login"), cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Limiter.Middleware("password_reset"), cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/users/me", cfg.Users.Me)
	protected.Patch("/users/me", cfg.Users.UpdateProfile)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Limiter.Middleware("ticket_create"), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("/bulk-delete", auth.RequireAdmin(), cfg.Tickets.BulkDelete)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/assign", auth.RequireStaff(), cfg.Tickets.AssignTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Get("/:id/activity", cfg.Tickets.ListActivity)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/mark-read", cfg.Notifications.MarkRead)
	notifications.Post("/mark-all-read", cfg.Notifications.MarkAllRead)

	protected.Get("/stats/dashboard", auth.RequireStaff(), cfg.Stats.Dashboard)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Post("/users", cfg.AdminUsers.CreateUser)
	admin.Get("/users", cfg.AdminUsers.ListUsers)
	admin.Get("/users/:id", cfg.AdminUsers.GetUser)
	admin.Patch("/users/:id", cfg.AdminUsers.UpdateUser)
}
