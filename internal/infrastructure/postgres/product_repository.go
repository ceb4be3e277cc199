package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/eoscafes/estoque-bot/internal/domain"
	"github.com/eoscafes/estoque-bot/internal/domain/catalog"
	"github.com/eoscafes/estoque-bot/internal/domain/entity"
)

const productColumns = "id, nome, categoria, unidade, quantidade, preco"

// ProductRepository implementa repository.ProductRepository sobre pgx.
type ProductRepository struct {
	q Querier
}

// NewProductRepository cria o repositório sobre um pool ou uma transação.
func NewProductRepository(q Querier) *ProductRepository {
	return &ProductRepository{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Quantity, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ler produto: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.q.QueryRow(ctx,
		"SELECT " + productColumns + " FROM tb_produtos WHERE id = $1", id)
	return scanProduct(row)
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar produtos: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Quantity, &p.Price); err != nil {
			return nil, fmt.Errorf("ler produto: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category entity.Category) ([]entity.Product, error) {
	return r.list(ctx,
		"SELECT " + productColumns + " FROM tb_produtos WHERE categoria = $1 ORDER BY nome",
		string(category))
}

func (r *ProductRepository) ListAvailableByCategory(ctx context.Context, category entity.Category) ([]entity.Product, error) {
	return r.list(ctx,
		"SELECT " + productColumns + " FROM tb_produtos WHERE categoria = $1 AND quantidade > 0 ORDER BY nome",
		string(category))
}

func (r *ProductRepository) Overview(ctx context.Context) ([]entity.Product, error) {
	return r.list(ctx,
		"SELECT " + productColumns + " FROM tb_produtos ORDER BY categoria, nome")
}

func (r *ProductRepository) Increment(ctx context.Context, id string, qty decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE tb_produtos
		 SET quantidade = quantidade + $2, data_ultima_movimentacao = NOW()
		 WHERE id = $1`,
		id, qty)
	if err != nil {
		return fmt.Errorf("incrementar quantidade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementIfAvailable aplica o desconto em uma única instrução
// condicional: zero linhas alteradas significa estoque insuficiente.
// Isso fecha a corrida entre duas saídas simultâneas do mesmo produto.
func (r *ProductRepository) DecrementIfAvailable(ctx context.Context, id string, qty decimal.Decimal) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE tb_produtos
		 SET quantidade = quantidade - $2, data_ultima_movimentacao = NOW()
		 WHERE id = $1 AND quantidade >= $2`,
		id, qty)
	if err != nil {
		return false, fmt.Errorf("descontar quantidade: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Seed faz upsert do catálogo inicial por nome, preservando quantidades
// já movimentadas.
func (r *ProductRepository) Seed(ctx context.Context, seeds []catalog.Seed) error {
	for _, seed := range seeds {
		_, err := r.q.Exec(ctx,
			`INSERT INTO tb_produtos (id, nome, tipo, unidade, categoria, preco)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (nome) DO UPDATE
			 SET tipo = EXCLUDED.tipo,
			     unidade = EXCLUDED.unidade,
			     categoria = EXCLUDED.categoria,
			     preco = EXCLUDED.preco`,
			uuid.NewString(), seed.Name, string(seed.Type), seed.Unit, string(seed.Category), seed.Price)
		if err != nil {
			return fmt.Errorf("semear produto %q: %w", seed.Name, err)
		}
	}
	return nil
}
