package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eoscafes/estoque-bot/internal/application/analytics"
	"github.com/eoscafes/estoque-bot/internal/infrastructure/postgres"
	httprouter "github.com/eoscafes/estoque-bot/internal/interfaces/http"
	"github.com/eoscafes/estoque-bot/pkg/config"
	"github.com/eoscafes/estoque-bot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(cfg.App.Env, "eos-dashboard")
	log.Info().Str("env", cfg.App.Env).Msg("iniciando dashboard")

	ctx := context.Background()
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
	dashboardUC := analytics.NewDashboardUseCase(productRepo, movementRepo, log)

	app := httprouter.NewApp(httprouter.RouterDeps{
		Dashboard: dashboardUC,
		Products:  productRepo,
		DB:        pool,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("dashboard no ar")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de parada recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerrar servidor")
	}

	log.Info().Msg("dashboard encerrado")
}
