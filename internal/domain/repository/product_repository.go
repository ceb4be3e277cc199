package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

// ProductRepository define o acesso a produtos do estoque.
type ProductRepository interface {
	// GetByID busca um produto pelo id. Devolve domain.ErrNotFound se não existir.
	GetByID(ctx context.Context, id string) (*entity.Product, error)

	// ListByCategory lista os produtos da categoria ordenados por nome.
	ListByCategory(ctx context.Context, category entity.Category) ([]entity.Product, error)

	// ListAvailableByCategory lista apenas produtos com quantidade > 0.
	ListAvailableByCategory(ctx context.Context, category entity.Category) ([]entity.Product, error)

	// Overview lista todos os produtos ordenados por categoria e nome.
	Overview(ctx context.Context) ([]entity.Product, error)

	// Increment soma qty à quantidade do produto.
	Increment(ctx context.Context, id string, qty decimal.Decimal) error

	// DecrementIfAvailable desconta qty somente se o saldo não ficar
	// negativo, em uma única instrução condicional. Devolve false quando
	// o estoque é insuficiente (nenhuma linha alterada).
	DecrementIfAvailable(ctx context.Context, id string, qty decimal.Decimal) (bool, error)
}
