// Package dto define os contratos JSON servidos pelo dashboard.
package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DashboardResponse é o payload de GET /api/data.
type DashboardResponse struct {
	Metrics    Metrics        `json:"metrics"`
	StockTable []StockRow     `json:"stock_table"`
	Movements  []MovementRow  `json:"movements"`
	Charts     Charts         `json:"charts"`
	Sales      SalesSummary   `json:"vendas"`
	TopCoffees []TopCoffeeRow `json:"top_cafes"`
}

// Metrics são os agregados do topo do dashboard.
type Metrics struct {
	TotalItems      string `json:"total_itens"`
	EstimatedValue  string `json:"valor_estimado"`
	RecentMovements int    `json:"movimentos_recent"`
	TotalGifts      int    `json:"total_brindes"`
}

// StockRow é uma linha da tabela de estoque.
type StockRow struct {
	Name       string `json:"nome"`
	Category   string `json:"categoria"`
	Quantity   string `json:"quantidade"`
	Unit       string `json:"unidade"`
	Price      string `json:"preco"`
	TotalValue string `json:"valor_total"`
}

// MovementRow é uma linha do histórico recente.
type MovementRow struct {
	Date     string `json:"data"`
	Name     string `json:"nome"`
	Type     string `json:"tipo"`
	Quantity string `json:"quantidade"`
	IsGift   bool   `json:"is_brinde"`
	Category string `json:"categoria"`
}

// Charts agrupa as séries prontas para o Chart.js do navegador.
type Charts struct {
	Bar  BarChart  `json:"bar"`
	Pie  PieChart  `json:"pie"`
	Line LineChart `json:"line"`
}

// BarChart é o estoque por produto.
type BarChart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// PieChart é a participação de cada categoria no estoque.
type PieChart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// LineChart são as séries diárias de entrada, saída e brinde.
type LineChart struct {
	Labels []string  `json:"labels"`
	In     []float64 `json:"entrada"`
	Out    []float64 `json:"saida"`
	Gift   []float64 `json:"brinde"`
}

// SalesSummary são os totais de venda (saídas não-brinde).
type SalesSummary struct {
	Today      string     `json:"hoje"`
	Last7Days  string     `json:"ultimos_7_dias"`
	Last30Days string     `json:"ultimos_30_dias"`
	Daily      []DailyRow `json:"diario"`
}

// DailyRow é o total vendido em um dia.
type DailyRow struct {
	Date  string `json:"dia"`
	Total string `json:"total"`
}

// TopCoffeeRow é um café do ranking de saídas dos últimos 30 dias.
type TopCoffeeRow struct {
	Name     string `json:"nome"`
	Quantity string `json:"quantidade"`
	Total    string `json:"total"`
}

// ErrorResponse é a resposta de erro padrão da API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SalesReport é o payload de GET /api/vendas.
type SalesReport struct {
	Today       string        `json:"hoje"`
	Month       string        `json:"mes"`
	ByCategory  []CategoryRow `json:"por_categoria_30d"`
	Monthly     []MonthlyRow  `json:"mensal_12m"`
	CoffeeShare string        `json:"participacao_cafes"`
}

// CategoryRow é o total vendido por categoria.
type CategoryRow struct {
	Category string `json:"categoria"`
	Total    string `json:"total"`
}

// MonthlyRow é o total vendido em um mês.
type MonthlyRow struct {
	Month string `json:"mes"`
	Total string `json:"total"`
}

// FormatBRL formata um valor como moeda brasileira: R$ 1.234,56.
func FormatBRL(v decimal.Decimal) string {
	s := v.StringFixed(2) // -1234.56
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), fracPart)
}

// FormatQuantity imprime uma quantidade sem zeros à direita (ex. 2, 1,5).
func FormatQuantity(v decimal.Decimal) string {
	s := v.String()
	return strings.ReplaceAll(s, ".", ",")
}
