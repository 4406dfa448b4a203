package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/voltai/billing-service/internal/api/http/handlers"
	"github.com/voltai/billing-service/internal/auth"
	"github.com/voltai/billing-service/internal/domain"
	"github.com/voltai/billing-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Info      *handlers.InfoHandler
	Health    *handlers.HealthHandler
	Customers *handlers.CustomersHandler
	Billing   *handlers.BillingHandler
	Auth      *handlers.AuthHandler
	Metrics   *observability.Metrics

	AuthMiddleware *auth.AuthMiddleware
	// EnforceAuth protects the customer routes; deletes then require ADMIN.
	EnforceAuth bool
	// LoginLimiter throttles POST /auth/login when set.
	LoginLimiter fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Info.Index)

	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/calculate-bill", cfg.Billing.CalculateBill)
	app.Post("/detect-anomalies", cfg.Billing.DetectAnomalies)

	authGroup := app.Group("/auth")
	loginChain := []fiber.Handler{}
	if cfg.LoginLimiter != nil {
		loginChain = append(loginChain, cfg.LoginLimiter)
	}
	loginChain = append(loginChain, cfg.Auth.Login)
	authGroup.Post("/login", loginChain...)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)

	var guards []fiber.Handler
	deleteChain := []fiber.Handler{cfg.Customers.Delete}
	if cfg.EnforceAuth {
		guards = []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}
		deleteChain = []fiber.Handler{auth.RequireRole(domain.EmployeeRoleAdmin), cfg.Customers.Delete}
	}
	customers := app.Group("/customers", guards...)
	customers.Get("", cfg.Customers.List)
	customers.Post("", cfg.Customers.Create)
	customers.Get("/stats", cfg.Customers.Stats)
	customers.Put("/:id/usage", cfg.Customers.UpdateUsage)
	customers.Post("/:id/alert/acknowledge", cfg.Customers.AcknowledgeAlert)
	customers.Delete("/:id", deleteChain...)
}
