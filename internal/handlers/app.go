package handlers

import (
	"evspare/internal/middleware"
	"evspare/internal/models"
	"evspare/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the services behind the HTTP API.
type Deps struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Cart      *services.CartService
	Orders    *services.OrderService
	Analytics *services.AnalyticsService
	Settings  *services.SettingsService
	// Checks are run by /health/ready, keyed by dependency name.
	Checks map[string]Check
	Logger zerolog.Logger
	// AccessLog enables Fiber's request logger.
	AccessLog bool
}

// NewApp builds the Fiber app with every route registered.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "evspare",
		ErrorHandler:          NewErrorHandler(d.Logger),
		BodyLimit:             10 * 1024 * 1024,
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(middleware.Metrics(StatusOf))

	// --- Operational ---
	NewHealthHandler(d.Checks).RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(d.Auth, d.Logger)

	NewAuthHandler(d.Auth).RegisterRoutes(apiV1, authRequired)
	NewProductHandler(d.Products).RegisterRoutes(apiV1)
	apiV1.Get("/settings", NewSettingsHandler(d.Settings).HandleGet)

	NewCartHandler(d.Cart).RegisterRoutes(apiV1.Group("/cart", authRequired))
	NewOrderHandler(d.Orders).RegisterRoutes(apiV1.Group("/orders", authRequired))

	adminRoutes := apiV1.Group("/admin", authRequired, middleware.RequireRole(models.RoleAdmin))
	NewAdminHandler(d.Auth, d.Products, d.Orders, d.Analytics, d.Settings).RegisterRoutes(adminRoutes)

	return app
}
