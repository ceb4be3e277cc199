package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

const movementColumns = `m.id, m.id_produto, m.tipo_movimentacao, m.quantidade,
	m.valor_unitario, m.is_brinde, m.observacao, m.data,
	p.nome, p.unidade, p.categoria`

// MovementRepository implementa repository.MovementRepository sobre pgx.
type MovementRepository struct {
	q Querier
}

// NewMovementRepository cria o repositório sobre um pool ou uma transação.
func NewMovementRepository(q Querier) *MovementRepository {
	return &MovementRepository{q: q}
}

func (r *MovementRepository) Create(ctx context.Context, movement *entity.Movement) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tb_movimentacoes
		 (id, id_produto, tipo_movimentacao, quantidade, valor_unitario, is_brinde, observacao, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		movement.ID, movement.ProductID, string(movement.Direction), movement.Quantity,
		movement.UnitPrice, movement.IsGift, movement.Note, movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserir movimentação: %w", err)
	}
	return nil
}

func (r *MovementRepository) listViews(ctx context.Context, query string, args ...any) ([]entity.MovementView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar movimentações: %w", err)
	}
	defer rows.Close()

	var views []entity.MovementView
	for rows.Next() {
		var v entity.MovementView
		err := rows.Scan(&v.ID, &v.ProductID, &v.Direction, &v.Quantity,
			&v.UnitPrice, &v.IsGift, &v.Note, &v.CreatedAt,
			&v.ProductName, &v.ProductUnit, &v.ProductCategory)
		if err != nil {
			return nil, fmt.Errorf("ler movimentação: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *MovementRepository) ListRecent(ctx context.Context, limit int, direction *entity.Direction) ([]entity.MovementView, error) {
	if direction != nil {
		return r.listViews(ctx,
			`SELECT `+movementColumns+`
			 FROM tb_movimentacoes m
			 JOIN tb_produtos p ON p.id = m.id_produto
			 WHERE m.tipo_movimentacao = $1
			 ORDER BY m.data DESC
			 LIMIT $2`,
			string(*direction), limit)
	}
	return r.listViews(ctx,
		`SELECT `+movementColumns+`
		 FROM tb_movimentacoes m
		 JOIN tb_produtos p ON p.id = m.id_produto
		 ORDER BY m.data DESC
		 LIMIT $1`,
		limit)
}

func (r *MovementRepository) ListSince(ctx context.Context, since time.Time) ([]entity.MovementView, error) {
	return r.listViews(ctx,
		`SELECT `+movementColumns+`
		 FROM tb_movimentacoes m
		 JOIN tb_produtos p ON p.id = m.id_produto
		 WHERE m.data >= $1
		 ORDER BY m.data DESC`,
		since)
}
