package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/eoscafes/estoque-bot/internal/application/analytics"
	"github.com/eoscafes/estoque-bot/internal/application/dto"
	"github.com/eoscafes/estoque-bot/internal/domain/repository"
)

// Pinger verifica a conectividade com o banco para o health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DashboardHandler expõe os agregados do estoque como JSON.
type DashboardHandler struct {
	dashboard *analytics.DashboardUseCase
	products  repository.ProductRepository
	db        Pinger
	log       zerolog.Logger
}

// NewDashboardHandler cria o handler.
func NewDashboardHandler(dashboard *analytics.DashboardUseCase, products repository.ProductRepository, db Pinger, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, products: products, db: db, log: log}
}

// GetData é GET /api/data: métricas, tabela de estoque, histórico e gráficos.
func (h *DashboardHandler) GetData(c *fiber.Ctx) error {
	data, err := h.dashboard.GetData(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("montar dashboard")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "internal_error",
			Message: "Não foi possível montar o dashboard.",
		})
	}
	return c.JSON(data)
}

// GetSales é GET /api/vendas: totais de venda por dia, categoria e mês.
func (h *DashboardHandler) GetSales(c *fiber.Ctx) error {
	report, err := h.dashboard.GetSalesReport(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("montar relatório de vendas")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "internal_error",
			Message: "Não foi possível montar o relatório de vendas.",
		})
	}
	return c.JSON(report)
}

// GetProducts é GET /api/produtos: snapshot simples do catálogo.
func (h *DashboardHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.products.Overview(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("listar produtos")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "internal_error",
			Message: "Não foi possível listar os produtos.",
		})
	}

	rows := make([]dto.StockRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, dto.StockRow{
			Name:       p.Name,
			Category:   string(p.Category),
			Quantity:   dto.FormatQuantity(p.Quantity),
			Unit:       p.Unit,
			Price:      dto.FormatBRL(p.Price),
			TotalValue: dto.FormatBRL(p.TotalValue()),
		})
	}
	return c.JSON(rows)
}

// GetHealth é GET /api/health: sonda o banco e devolve o status.
func (h *DashboardHandler) GetHealth(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"db":     "down",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"db":     "up",
	})
}
