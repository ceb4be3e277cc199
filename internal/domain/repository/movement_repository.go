package repository

import (
	"context"
	"time"

	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

// MovementRepository define o acesso ao histórico de movimentações.
type MovementRepository interface {
	// Create insere uma movimentação. Movimentações nunca são editadas.
	Create(ctx context.Context, movement *entity.Movement) error

	// ListRecent lista as movimentações mais recentes (newest-first),
	// opcionalmente filtradas por direção.
	ListRecent(ctx context.Context, limit int, direction *entity.Direction) ([]entity.MovementView, error)

	// ListSince lista as movimentações a partir do instante dado,
	// newest-first, para agregações do dashboard.
	ListSince(ctx context.Context, since time.Time) ([]entity.MovementView, error)
}
