package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/eoscafes/estoque-bot/internal/application/flow"
	"github.com/eoscafes/estoque-bot/internal/application/inventory"
	"github.com/eoscafes/estoque-bot/internal/domain/catalog"
	infraai "github.com/eoscafes/estoque-bot/internal/infrastructure/ai"
	"github.com/eoscafes/estoque-bot/internal/infrastructure/postgres"
	"github.com/eoscafes/estoque-bot/internal/infrastructure/telegram"
	"github.com/eoscafes/estoque-bot/pkg/config"
	"github.com/eoscafes/estoque-bot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(cfg.App.Env, cfg.App.Name)
	log.Info().Str("env", cfg.App.Env).Msg("iniciando bot de estoque")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("conectar no PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("garantir schema")
	}

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	if err := productRepo.Seed(ctx, catalog.Seeds()); err != nil {
		log.Fatal().Err(err).Msg("semear catálogo")
	}

	txRunner := postgres.NewTxRunner(pool)
	recordUC := inventory.NewRecordMovementUseCase(txRunner, log)

	groq := infraai.NewGroqService(cfg.AI.GroqAPIKey, cfg.AI.GroqModel)

	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	store := flow.NewStore(sessionTTL, log)
	store.StartJanitor(ctx, time.Minute)

	machine := flow.NewMachine(store, productRepo, movementRepo, recordUC, groq, log)

	bot, err := telegram.NewBot(cfg.Telegram.Token, machine, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conectar no Telegram")
	}

	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("bot finalizado com erro")
	}
	log.Info().Msg("bot encerrado")
}
