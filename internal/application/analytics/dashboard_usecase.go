// Package analytics agrega o estado do estoque em métricas e séries
// prontas para o dashboard. Tudo é recalculado a cada leitura; o custo é
// proporcional aos produtos e à janela de movimentações.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/eoscafes/estoque-bot/internal/application/dto"
	"github.com/eoscafes/estoque-bot/internal/domain/entity"
	"github.com/eoscafes/estoque-bot/internal/domain/repository"
)

const (
	movementWindowDays = 30
	lineChartDays      = 14
	movementListLimit  = 20
	topCoffeesLimit    = 5
)

// DashboardUseCase monta os payloads das rotas /api/data e /api/vendas.
type DashboardUseCase struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewDashboardUseCase cria o caso de uso.
func NewDashboardUseCase(products repository.ProductRepository, movements repository.MovementRepository, log zerolog.Logger) *DashboardUseCase {
	return &DashboardUseCase{products: products, movements: movements, log: log, now: time.Now}
}

// GetData lê o snapshot de produtos e a janela recente de movimentações
// (em paralelo) e computa métricas, tabela, histórico e gráficos.
func (uc *DashboardUseCase) GetData(ctx context.Context) (*dto.DashboardResponse, error) {
	now := uc.now()

	type productsResult struct {
		items []entity.Product
		err   error
	}
	type movementsResult struct {
		items []entity.MovementView
		err   error
	}

	productsCh := make(chan productsResult, 1)
	movementsCh := make(chan movementsResult, 1)

	go func() {
		items, err := uc.products.Overview(ctx)
		productsCh <- productsResult{items: items, err: err}
	}()
	go func() {
		items, err := uc.movements.ListSince(ctx, now.AddDate(0, 0, -movementWindowDays))
		movementsCh <- movementsResult{items: items, err: err}
	}()

	productsRes := <-productsCh
	movementsRes := <-movementsCh
	if productsRes.err != nil {
		return nil, fmt.Errorf("ler produtos: %w", productsRes.err)
	}
	if movementsRes.err != nil {
		return nil, fmt.Errorf("ler movimentações: %w", movementsRes.err)
	}

	products := productsRes.items
	movements := movementsRes.items

	resp := &dto.DashboardResponse{
		Metrics:    buildMetrics(products, movements),
		StockTable: buildStockTable(products),
		Movements:  buildMovementRows(movements),
		Charts: dto.Charts{
			Bar:  buildBarChart(products),
			Pie:  buildPieChart(products),
			Line: buildLineChart(movements, now),
		},
		Sales:      buildSales(movements, now),
		TopCoffees: buildTopCoffees(movements),
	}

	uc.log.Debug().
		Int("produtos", len(products)).
		Int("movimentacoes", len(movements)).
		Msg("dashboard montado")

	return resp, nil
}

func buildMetrics(products []entity.Product, movements []entity.MovementView) dto.Metrics {
	totalItems := decimal.Zero
	totalValue := decimal.Zero
	for _, p := range products {
		totalItems = totalItems.Add(p.Quantity)
		totalValue = totalValue.Add(p.TotalValue())
	}

	gifts := 0
	for _, m := range movements {
		if m.IsGift {
			gifts++
		}
	}

	return dto.Metrics{
		TotalItems:      dto.FormatQuantity(totalItems),
		EstimatedValue:  dto.FormatBRL(totalValue),
		RecentMovements: len(movements),
		TotalGifts:      gifts,
	}
}

func buildStockTable(products []entity.Product) []dto.StockRow {
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
	return rows
}

func buildMovementRows(movements []entity.MovementView) []dto.MovementRow {
	limit := movementListLimit
	if len(movements) < limit {
		limit = len(movements)
	}
	rows := make([]dto.MovementRow, 0, limit)
	for _, m := range movements[:limit] {
		rows = append(rows, dto.MovementRow{
			Date:     m.CreatedAt.Format("02/01/2006 15:04"),
			Name:     m.ProductName,
			Type:     m.Type(),
			Quantity: dto.FormatQuantity(m.Quantity),
			IsGift:   m.IsGift,
			Category: string(m.ProductCategory),
		})
	}
	return rows
}

func buildBarChart(products []entity.Product) dto.BarChart {
	chart := dto.BarChart{Labels: []string{}, Data: []float64{}}
	for _, p := range products {
		chart.Labels = append(chart.Labels, p.Name)
		chart.Data = append(chart.Data, p.Quantity.InexactFloat64())
	}
	return chart
}

func buildPieChart(products []entity.Product) dto.PieChart {
	chart := dto.PieChart{Labels: []string{}, Data: []float64{}}
	for _, c := range entity.AllCategories() {
		total := decimal.Zero
		for _, p := range products {
			if p.Category == c {
				total = total.Add(p.Quantity)
			}
		}
		if total.IsZero() {
			continue
		}
		chart.Labels = append(chart.Labels, c.Label())
		chart.Data = append(chart.Data, total.InexactFloat64())
	}
	return chart
}

func buildLineChart(movements []entity.MovementView, now time.Time) dto.LineChart {
	chart := dto.LineChart{
		Labels: make([]string, lineChartDays),
		In:     make([]float64, lineChartDays),
		Out:    make([]float64, lineChartDays),
		Gift:   make([]float64, lineChartDays),
	}

	start := truncateDay(now).AddDate(0, 0, -(lineChartDays - 1))
	for i := 0; i < lineChartDays; i++ {
		chart.Labels[i] = start.AddDate(0, 0, i).Format("02/01")
	}

	for _, m := range movements {
		day := truncateDay(m.CreatedAt)
		idx := int(day.Sub(start).Hours() / 24)
		if idx < 0 || idx >= lineChartDays {
			continue
		}
		qty := m.Quantity.InexactFloat64()
		switch m.Type() {
		case "entrada":
			chart.In[idx] += qty
		case "saida":
			chart.Out[idx] += qty
		case "brinde":
			chart.Gift[idx] += qty
		}
	}
	return chart
}

func buildSales(movements []entity.MovementView, now time.Time) dto.SalesSummary {
	today := truncateDay(now)
	weekStart := today.AddDate(0, 0, -6)

	totalToday := decimal.Zero
	total7 := decimal.Zero
	total30 := decimal.Zero
	daily := map[string]decimal.Decimal{}

	for _, m := range movements {
		if m.Direction != entity.DirectionOut || m.IsGift {
			continue
		}
		value := m.TotalValue()
		total30 = total30.Add(value)

		day := truncateDay(m.CreatedAt)
		if !day.Before(weekStart) {
			total7 = total7.Add(value)
		}
		if day.Equal(today) {
			totalToday = totalToday.Add(value)
		}
		key := day.Format("02/01")
		daily[key] = daily[key].Add(value)
	}

	rows := make([]dto.DailyRow, 0, movementWindowDays)
	for i := movementWindowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format("02/01")
		if total, ok := daily[key]; ok {
			rows = append(rows, dto.DailyRow{Date: key, Total: dto.FormatBRL(total)})
		}
	}

	return dto.SalesSummary{
		Today:      dto.FormatBRL(totalToday),
		Last7Days:  dto.FormatBRL(total7),
		Last30Days: dto.FormatBRL(total30),
		Daily:      rows,
	}
}

func buildTopCoffees(movements []entity.MovementView) []dto.TopCoffeeRow {
	type agg struct {
		quantity decimal.Decimal
		total    decimal.Decimal
	}
	byName := map[string]*agg{}
	for _, m := range movements {
		if m.Direction != entity.DirectionOut || m.IsGift || m.ProductCategory != entity.CategoryCafes {
			continue
		}
		a, ok := byName[m.ProductName]
		if !ok {
			a = &agg{}
			byName[m.ProductName] = a
		}
		a.quantity = a.quantity.Add(m.Quantity)
		a.total = a.total.Add(m.TotalValue())
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return byName[names[i]].total.GreaterThan(byName[names[j]].total)
	})

	limit := topCoffeesLimit
	if len(names) < limit {
		limit = len(names)
	}
	rows := make([]dto.TopCoffeeRow, 0, limit)
	for _, name := range names[:limit] {
		rows = append(rows, dto.TopCoffeeRow{
			Name:     name,
			Quantity: dto.FormatQuantity(byName[name].quantity),
			Total:    dto.FormatBRL(byName[name].total),
		})
	}
	return rows
}

// GetSalesReport computa os totais de venda para /api/vendas a partir de
// uma janela de 12 meses.
func (uc *DashboardUseCase) GetSalesReport(ctx context.Context) (*dto.SalesReport, error) {
	now := uc.now()

	movements, err := uc.movements.ListSince(ctx, now.AddDate(-1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("ler movimentações: %w", err)
	}

	today := truncateDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last30 := today.AddDate(0, 0, -(movementWindowDays - 1))

	totalToday := decimal.Zero
	totalMonth := decimal.Zero
	total30 := decimal.Zero
	coffees30 := decimal.Zero
	byCategory := map[entity.Category]decimal.Decimal{}
	byMonth := map[string]decimal.Decimal{}

	for _, m := range movements {
		if m.Direction != entity.DirectionOut || m.IsGift {
			continue
		}
		value := m.TotalValue()
		day := truncateDay(m.CreatedAt)

		if day.Equal(today) {
			totalToday = totalToday.Add(value)
		}
		if !m.CreatedAt.Before(monthStart) {
			totalMonth = totalMonth.Add(value)
		}
		if !day.Before(last30) {
			total30 = total30.Add(value)
			byCategory[m.ProductCategory] = byCategory[m.ProductCategory].Add(value)
			if m.ProductCategory == entity.CategoryCafes {
				coffees30 = coffees30.Add(value)
			}
		}
		monthKey := m.CreatedAt.Format("01/2006")
		byMonth[monthKey] = byMonth[monthKey].Add(value)
	}

	categories := make([]dto.CategoryRow, 0, len(byCategory))
	for _, c := range entity.AllCategories() {
		if total, ok := byCategory[c]; ok {
			categories = append(categories, dto.CategoryRow{Category: c.Label(), Total: dto.FormatBRL(total)})
		}
	}

	monthly := make([]dto.MonthlyRow, 0, 12)
	for i := 11; i >= 0; i-- {
		month := monthStart.AddDate(0, -i, 0)
		key := month.Format("01/2006")
		total := byMonth[key]
		monthly = append(monthly, dto.MonthlyRow{Month: key, Total: dto.FormatBRL(total)})
	}

	share := "0%"
	if total30.IsPositive() {
		pct := coffees30.Div(total30).Mul(decimal.NewFromInt(100)).Round(1)
		share = dto.FormatQuantity(pct) + "%"
	}

	return &dto.SalesReport{
		Today:       dto.FormatBRL(totalToday),
		Month:       dto.FormatBRL(totalMonth),
		ByCategory:  categories,
		Monthly:     monthly,
		CoffeeShare: share,
	}, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
