// Package inventory contém o caso de uso de registro de movimentações.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/eoscafes/estoque-bot/internal/application/ports"
	"github.com/eoscafes/estoque-bot/internal/domain"
	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

// RecordMovementInput são os dados de uma movimentação a registrar.
type RecordMovementInput struct {
	ProductID string
	Direction entity.Direction
	Quantity  decimal.Decimal
	IsGift    bool
	Note      string
}

// RecordMovementResult devolve a movimentação criada e o produto já com o
// saldo pós-commit.
type RecordMovementResult struct {
	Movement entity.Movement
	Product  entity.Product
}

// RecordMovementUseCase aplica uma movimentação de estoque: o desconto
// condicional (saída) ou o incremento (entrada) e a linha de histórico
// acontecem na mesma transação, ou nada acontece.
type RecordMovementUseCase struct {
	tx  ports.TxRunner
	log zerolog.Logger
}

// NewRecordMovementUseCase cria o caso de uso.
func NewRecordMovementUseCase(tx ports.TxRunner, log zerolog.Logger) *RecordMovementUseCase {
	return &RecordMovementUseCase{tx: tx, log: log}
}

// Execute valida e aplica a movimentação.
func (uc *RecordMovementUseCase) Execute(ctx context.Context, in RecordMovementInput) (*RecordMovementResult, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: produto não informado", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: a quantidade deve ser positiva", domain.ErrInvalidInput)
	}
	if in.Direction != entity.DirectionIn && in.Direction != entity.DirectionOut {
		return nil, fmt.Errorf("%w: direção desconhecida %q", domain.ErrInvalidInput, in.Direction)
	}
	if in.IsGift && in.Direction != entity.DirectionOut {
		return nil, fmt.Errorf("%w: brinde só vale para saída", domain.ErrInvalidInput)
	}

	var result RecordMovementResult

	err := uc.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepositories) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}

		switch in.Direction {
		case entity.DirectionIn:
			if err := repos.Products.Increment(ctx, product.ID, in.Quantity); err != nil {
				return fmt.Errorf("incrementar estoque: %w", err)
			}
		case entity.DirectionOut:
			ok, err := repos.Products.DecrementIfAvailable(ctx, product.ID, in.Quantity)
			if err != nil {
				return fmt.Errorf("descontar estoque: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: %s tem %s %s", domain.ErrInsufficientStock,
					product.Name, product.Quantity.String(), product.Unit)
			}
		}

		unitPrice := product.Price
		if in.IsGift {
			unitPrice = decimal.Zero
		}

		movement := entity.Movement{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			Direction: in.Direction,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			IsGift:    in.IsGift,
			Note:      in.Note,
			CreatedAt: time.Now().UTC(),
		}
		if err := repos.Movements.Create(ctx, &movement); err != nil {
			return fmt.Errorf("registrar movimentação: %w", err)
		}

		updated, err := repos.Products.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}

		result.Movement = movement
		result.Product = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("produto", result.Product.Name).
		Str("direcao", string(in.Direction)).
		Str("quantidade", in.Quantity.String()).
		Bool("brinde", in.IsGift).
		Str("saldo", result.Product.Quantity.String()).
		Msg("movimentação registrada")

	return &result, nil
}
