package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	SLA            *handlers.SLAHandler
	Settings       *handlers.SettingsHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/admin/login", cfg.Auth.Login)
	app.Post("/auth/admin/bootstrap", cfg.Auth.Bootstrap)

	app.Post("/sla/preview", cfg.SLA.Preview)
	app.Get("/tickets/:id/sla", cfg.SLA.TicketSLA)

	admin := app.Group("/admin/sla", cfg.AuthMiddleware.Handle)
	admin.Get("/settings", cfg.Settings.GetSettings)
	admin.Put("/policies/:priority", cfg.Settings.UpdatePolicy)
	admin.Put("/business-hours", cfg.Settings.UpdateBusinessHours)
	admin.Get("/holidays", cfg.Settings.ListHolidays)
	admin.Post("/holidays", cfg.Settings.CreateHoliday)
	admin.Post("/holidays/import", cfg.Settings.ImportHolidays)
	admin.Delete("/holidays/:id", cfg.Settings.DeleteHoliday)
	admin.Post("/admins", cfg.Auth.Register)
}
