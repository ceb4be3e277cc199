package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indica o sentido de uma movimentação de estoque.
type Direction string

const (
	DirectionIn  Direction = "entrada"
	DirectionOut Direction = "saida"
)

// ParseDirection valida uma direção vinda de fora.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionIn:
		return DirectionIn, true
	case DirectionOut:
		return DirectionOut, true
	}
	return "", false
}

// Movement registra uma entrada ou saída de estoque. Imutável depois de
// criada; correções são movimentações compensatórias, nunca edições.
// IsGift marca saídas a custo zero (brindes e degustações); a direção
// continua "saida" e o desconto de estoque é o mesmo.
type Movement struct {
	ID        string
	ProductID string
	Direction Direction
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	IsGift    bool
	Note      string
	CreatedAt time.Time
}

// Type devolve o tipo exibido no dashboard: entrada, saida ou brinde.
func (m Movement) Type() string {
	if m.IsGift {
		return "brinde"
	}
	return string(m.Direction)
}

// TotalValue devolve o valor movimentado (zero para brindes).
func (m Movement) TotalValue() decimal.Decimal {
	if m.IsGift {
		return decimal.Zero
	}
	return m.UnitPrice.Mul(m.Quantity)
}

// MovementView é uma movimentação enriquecida com dados do produto para
// histórico e dashboard.
type MovementView struct {
	Movement
	ProductName     string
	ProductUnit     string
	ProductCategory Category
}
