package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tb_produtos (
		id UUID PRIMARY KEY,
		nome TEXT NOT NULL UNIQUE,
		tipo TEXT NOT NULL CHECK (tipo IN ('produto_acabado', 'materia_prima')),
		quantidade NUMERIC(14, 3) NOT NULL DEFAULT 0 CHECK (quantidade >= 0),
		unidade TEXT NOT NULL DEFAULT 'un',
		categoria TEXT NOT NULL DEFAULT 'cafes',
		preco NUMERIC(14, 2) NOT NULL DEFAULT 0,
		data_ultima_movimentacao TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tb_movimentacoes (
		id UUID PRIMARY KEY,
		id_produto UUID NOT NULL REFERENCES tb_produtos(id) ON DELETE CASCADE,
		tipo_movimentacao TEXT NOT NULL CHECK (tipo_movimentacao IN ('entrada', 'saida')),
		quantidade NUMERIC(14, 3) NOT NULL CHECK (quantidade > 0),
		valor_unitario NUMERIC(14, 2) NOT NULL DEFAULT 0,
		is_brinde BOOLEAN NOT NULL DEFAULT FALSE,
		observacao TEXT NOT NULL DEFAULT '',
		data TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movimentacoes_data ON tb_movimentacoes (data DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_produtos_categoria ON tb_produtos (categoria, nome)`,
}

// EnsureSchema cria as tabelas e índices se ainda não existirem.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("criar schema: %w", err)
		}
	}
	return nil
}
