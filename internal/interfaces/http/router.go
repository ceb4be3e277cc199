// Package http serve os agregados do dashboard como uma API JSON Fiber.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/eoscafes/estoque-bot/internal/application/analytics"
	"github.com/eoscafes/estoque-bot/internal/domain/repository"
)

// RouterDeps dependências do router.
type RouterDeps struct {
	Dashboard *analytics.DashboardUseCase
	Products  repository.ProductRepository
	DB        Pinger
	Log       zerolog.Logger
}

// NewApp cria o app Fiber com as rotas do dashboard.
func NewApp(deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "eos-dashboard",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(recover.New())

	handler := NewDashboardHandler(deps.Dashboard, deps.Products, deps.DB, deps.Log)

	api := app.Group("/api")
	api.Get("/data", handler.GetData)
	api.Get("/vendas", handler.GetSales)
	api.Get("/produtos", handler.GetProducts)
	api.Get("/health", handler.GetHealth)

	return app
}
