// Cria o schema e faz o upsert do catálogo inicial de produtos.
package main

import (
	"context"
	"time"

	"github.com/eoscafes/estoque-bot/internal/domain/catalog"
	"github.com/eoscafes/estoque-bot/internal/infrastructure/postgres"
	"github.com/eoscafes/estoque-bot/pkg/config"
	"github.com/eoscafes/estoque-bot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(cfg.App.Env, "eos-seed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("conectar no PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("criar schema")
	}

	seeds := catalog.Seeds()
	if err := postgres.NewProductRepository(pool).Seed(ctx, seeds); err != nil {
		log.Fatal().Err(err).Msg("semear catálogo")
	}

	log.Info().Int("produtos", len(seeds)).Msg("catálogo semeado")
}
