package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eoscafes/estoque-bot/internal/application/ports"
)

// TxRunner executa casos de uso dentro de uma transação, entregando
// repositórios ligados ao tx. Commit no sucesso, rollback em qualquer erro.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner cria o runner sobre o pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("abrir transação: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ports.TxRepositories{
		Products:  NewProductRepository(tx),
		Movements: NewMovementRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
