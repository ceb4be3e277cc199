// Package catalog concentra o catálogo estático da torrefação: seeds dos
// produtos e as categorias visíveis em cada fluxo de conversa.
package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

// ProductType distingue produto acabado de matéria prima.
type ProductType string

const (
	TypeFinished ProductType = "produto_acabado"
	TypeRaw      ProductType = "materia_prima"
)

// Seed descreve um produto do catálogo inicial.
type Seed struct {
	Name     string
	Type     ProductType
	Unit     string
	Category entity.Category
	Price    decimal.Decimal
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Seeds devolve o catálogo inicial da Eos Cafés Especiais.
func Seeds() []Seed {
	return []Seed{
		{"Café especial moído 250g", TypeFinished, "un", entity.CategoryCafes, price("28.90")},
		{"Café especial moído 1kg", TypeFinished, "un", entity.CategoryCafes, price("86.00")},
		{"Café especial em grãos 250g", TypeFinished, "un", entity.CategoryCafes, price("30.50")},
		{"Café especial em grãos 1kg", TypeFinished, "un", entity.CategoryCafes, price("92.00")},
		{"Café gourmet clássico 250g", TypeFinished, "un", entity.CategoryCafes, price("26.00")},
		{"Café gourmet clássico 1kg", TypeFinished, "un", entity.CategoryCafes, price("82.00")},
		{"Café gourmet intenso 1kg", TypeFinished, "un", entity.CategoryCafes, price("60.00")},
		{"Embalagem 1kg", TypeRaw, "un", entity.CategoryEmbalagens, price("3.00")},
		{"Embalagem especial 250g", TypeRaw, "un", entity.CategoryEmbalagens, price("1.20")},
		{"Embalagem gourmet 250g", TypeRaw, "un", entity.CategoryEmbalagens, price("1.50")},
		{"Lote de café verde especial moído", TypeRaw, "kg", entity.CategoryInsumos, price("0")},
		{"Lote de café verde especial em grãos", TypeRaw, "kg", entity.CategoryInsumos, price("0")},
		{"Lote de café verde gourmet", TypeRaw, "kg", entity.CategoryInsumos, price("0")},
	}
}

// Categories devolve as categorias oferecidas no fluxo da direção dada.
// Insumos (café verde) entram no estoque mas nunca saem como venda; a
// categoria Brindes só aparece na saída, como atalho para saída com
// is_gift pré-marcado.
func Categories(direction entity.Direction) []entity.Category {
	if direction == entity.DirectionOut {
		return []entity.Category{entity.CategoryCafes, entity.CategoryEmbalagens, entity.CategoryBrindes}
	}
	return []entity.Category{entity.CategoryCafes, entity.CategoryEmbalagens, entity.CategoryInsumos}
}

// Icon devolve o emoji usado nos botões e listagens da categoria.
func Icon(c entity.Category) string {
	switch c {
	case entity.CategoryCafes:
		return "☕"
	case entity.CategoryEmbalagens:
		return "📦"
	case entity.CategoryBrindes:
		return "🎁"
	case entity.CategoryInsumos:
		return "🌱"
	}
	return "▫️"
}

// QuickQuantities são os atalhos de quantidade dos teclados inline.
func QuickQuantities() []int64 {
	return []int64{1, 5, 10, 15, 30, 50}
}
