package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/raffleworks/lottery-service/internal/api/http/handlers"
	"github.com/raffleworks/lottery-service/internal/auth"
	"github.com/raffleworks/lottery-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Lotteries      *handlers.LotteriesHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	lotteries := app.Group("/lotteries")
	lotteries.Get("/", cfg.Lotteries.List)
	lotteries.Get("/:id", cfg.Lotteries.Get)
	lotteries.Get("/:id/players", cfg.Lotteries.Players)
	lotteries.Get("/:id/entries/:identity", cfg.Lotteries.Entries)
	lotteries.Get("/:id/winners/:slot", cfg.Lotteries.Winner)
	lotteries.Get("/:id/commission", cfg.Lotteries.CommissionStatus)
	lotteries.Get("/:id/payouts", cfg.Lotteries.Payouts)

	protected := lotteries.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())
	protected.Post("/", cfg.Lotteries.Create)
	protected.Post("/:id/enter", cfg.Lotteries.Enter)
	protected.Post("/:id/pick-winner", cfg.Lotteries.PickWinner)
	protected.Post("/:id/commission/withdraw", cfg.Lotteries.WithdrawCommission)
}
