package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Orders         *handlers.OrdersHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	// Storefront reads stay public so the catalog renders without a session.
	app.Get("/products", cfg.Catalog.ListProducts)
	app.Get("/products/:id", cfg.Catalog.GetProduct)
	app.Get("/categories", cfg.Catalog.ListCategories)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Get("/users/:id", cfg.Auth.Profile)
	protected.Post("/orders", cfg.Orders.CreateOrder)
	protected.Get("/orders", cfg.Orders.ListOrders)
	protected.Get("/orders/:id", cfg.Orders.GetOrder)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Auth.ListUsers)
	admin.Post("/products", cfg.Catalog.CreateProduct)
	admin.Put("/products/:id", cfg.Catalog.UpdateProduct)
	admin.Delete("/products/:id", cfg.Catalog.DeleteProduct)
	admin.Post("/categories", cfg.Catalog.CreateCategory)
	admin.Put("/categories/:id", cfg.Catalog.UpdateCategory)
	admin.Delete("/categories/:id", cfg.Catalog.DeleteCategory)
	admin.Put("/orders/:id/status", cfg.Orders.UpdateOrderStatus)
	admin.Get("/audit", cfg.Audit.ListEntries)
	admin.Get("/status", cfg.Audit.Status)

	superAdmin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireSuperAdmin())
	superAdmin.Put("/users/:id/role", cfg.Auth.SetRole)
}
