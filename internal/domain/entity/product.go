package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category classifica um produto do estoque.
type Category string

const (
	CategoryCafes      Category = "cafes"
	CategoryEmbalagens Category = "embalagens"
	CategoryBrindes    Category = "brindes"
	CategoryInsumos    Category = "insumos"
)

// AllCategories devolve as categorias na ordem de exibição dos menus.
func AllCategories() []Category {
	return []Category{CategoryCafes, CategoryEmbalagens, CategoryBrindes, CategoryInsumos}
}

// ParseCategory normaliza e valida uma categoria vinda de fora (callback, API).
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryCafes:
		return CategoryCafes, true
	case CategoryEmbalagens:
		return CategoryEmbalagens, true
	case CategoryBrindes:
		return CategoryBrindes, true
	case CategoryInsumos:
		return CategoryInsumos, true
	}
	return "", false
}

// Label devolve o nome da categoria para exibição ao usuário.
func (c Category) Label() string {
	switch c {
	case CategoryCafes:
		return "Cafés"
	case CategoryEmbalagens:
		return "Embalagens"
	case CategoryBrindes:
		return "Brindes"
	case CategoryInsumos:
		return "Insumos"
	}
	return string(c)
}

// Product é um item do estoque da torrefação. A quantidade só muda pela
// aplicação de movimentações; produtos nunca são apagados.
type Product struct {
	ID       string
	Name     string
	Category Category
	Unit     string // un, kg
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// TotalValue devolve quantidade * preço unitário.
func (p Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(p.Quantity)
}

// Available indica se o produto tem estoque para saída.
func (p Product) Available() bool {
	return p.Quantity.IsPositive()
}
