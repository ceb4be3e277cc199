// Package flow implementa a máquina de estados da conversa: fluxos
// guiados de entrada/saída de estoque, consultas de estoque/histórico e
// o desvio de uma rodada para o assistente de IA.
package flow

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

// State é o passo atual da conversa de um chat.
type State int

const (
	StateIdle State = iota
	StateSelectingCategory
	StateSelectingProduct
	StateSelectingQuantity
	StateAwaitingCustomQuantity
	StateConfirmingGift
	StateConfirming
	StateAskingAI
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelectingCategory:
		return "selecionando_categoria"
	case StateSelectingProduct:
		return "selecionando_produto"
	case StateSelectingQuantity:
		return "selecionando_quantidade"
	case StateAwaitingCustomQuantity:
		return "aguardando_quantidade"
	case StateConfirmingGift:
		return "confirmando_brinde"
	case StateConfirming:
		return "confirmando"
	case StateAskingAI:
		return "perguntando_ia"
	}
	return "desconhecido"
}

// Session guarda o progresso de um chat por um fluxo. Uma sessão por
// chat. O transporte atende cada update em uma goroutine própria, então
// o mu serializa updates concorrentes do mesmo chat: Machine.Handle o
// segura do início ao fim da transição.
type Session struct {
	mu sync.Mutex

	ChatID int64
	State  State

	// Seleções acumuladas do fluxo de movimentação.
	Direction   entity.Direction
	Category    entity.Category
	ProductID   string
	ProductName string
	ProductUnit string
	Quantity    decimal.Decimal
	IsGift      bool
	GiftPreset  bool // categoria Brindes escolhida: pula a pergunta de brinde

	CreatedAt    time.Time
	LastActivity time.Time
}

// InFlow indica se a sessão está no meio de um fluxo de movimentação.
func (s *Session) InFlow() bool {
	return s.State != StateIdle && s.State != StateAskingAI
}

// ResetFlow descarta as seleções e volta ao estado ocioso.
func (s *Session) ResetFlow() {
	s.State = StateIdle
	s.Direction = ""
	s.Category = ""
	s.ProductID = ""
	s.ProductName = ""
	s.ProductUnit = ""
	s.Quantity = decimal.Zero
	s.IsGift = false
	s.GiftPreset = false
}

// ClearQuantity volta à escolha de quantidade mantendo categoria e
// produto, usado quando o commit falha por estoque insuficiente.
func (s *Session) ClearQuantity() {
	s.Quantity = decimal.Zero
	s.IsGift = false
	s.State = StateSelectingQuantity
	if s.GiftPreset {
		s.IsGift = true
	}
}
