package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/config"
	"github.com/lincomp/stizun/internal/infra"
	"github.com/lincomp/stizun/internal/pricing"
	"github.com/lincomp/stizun/internal/repository"
	"github.com/lincomp/stizun/internal/router"
	"github.com/lincomp/stizun/internal/service"
	"github.com/lincomp/stizun/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for reconciliation jobs. Wired here (composition root) so
	// the pool has full access to the service graph.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetchers := infra.NewFetcherRegistry()
	httpFetcher := infra.NewHTTPDescriptionFetcher(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)
	fetchers.RegisterDescription("http", httpFetcher)

	engine := pricing.NewEngine(pricing.NewDenominationRounding(decimal.RequireFromString("0.05")))

	productRepo := repository.NewProductRepository(db)
	supplyItemRepo := repository.NewSupplyItemRepository(db)
	marginRangeRepo := repository.NewMarginRangeRepository(db)
	taxClassRepo := repository.NewTaxClassRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// Without a system-wide catch-all range, any product missing a specific
	// rule fails to price.
	if ranges, err := marginRangeRepo.SystemWide(ctx); err == nil {
		catchAll := false
		for _, mr := range ranges {
			if !mr.StartPrice.Valid && !mr.EndPrice.Valid {
				catchAll = true
				break
			}
		}
		if !catchAll {
			log.Warn().Msg("no system-wide catch-all margin range configured")
		}
	}

	productSvc := service.NewProductService(productRepo, marginRangeRepo, taxClassRepo, supplyItemRepo, historyRepo, engine, fetchers, service.PricingDefaults{
		TaxClassName:  cfg.DefaultTaxClassName,
		TaxPercentage: cfg.DefaultTaxPercentage,
	})
	syncSvc := service.NewSupplySyncService(productRepo, supplyItemRepo, marginRangeRepo, historyRepo, productSvc)

	worker.StartWorkerPool(ctx, rdb, &worker.Handlers{Sync: syncSvc}, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("catalog backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
