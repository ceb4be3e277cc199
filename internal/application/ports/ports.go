// Package ports declara as dependências externas das camadas de aplicação.
package ports

import (
	"context"

	"github.com/eoscafes/estoque-bot/internal/domain/repository"
)

// TxRepositories agrupa os repositórios ligados a uma mesma transação.
type TxRepositories struct {
	Products  repository.ProductRepository
	Movements repository.MovementRepository
}

// TxRunner executa fn dentro de uma transação. Qualquer erro de fn causa
// rollback; nil causa commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// LLMService é o cliente de inferência para o assistente de estoque.
// Uma pergunta, uma resposta; sem streaming.
type LLMService interface {
	Ask(ctx context.Context, question, contextSummary string) (string, error)
}
