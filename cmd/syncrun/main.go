// Command syncrun executes a single reconciliation pass and exits. Meant for
// cron jobs and one-off operator runs; the server's worker pool handles the
// API-triggered passes.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/config"
	"github.com/lincomp/stizun/internal/infra"
	"github.com/lincomp/stizun/internal/pricing"
	"github.com/lincomp/stizun/internal/repository"
	"github.com/lincomp/stizun/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	fetchers := infra.NewFetcherRegistry()
	fetchers.RegisterDescription("http", infra.NewHTTPDescriptionFetcher(time.Duration(cfg.FetchTimeoutSeconds)*time.Second))

	engine := pricing.NewEngine(pricing.NewDenominationRounding(decimal.RequireFromString("0.05")))

	productRepo := repository.NewProductRepository(db)
	supplyItemRepo := repository.NewSupplyItemRepository(db)
	marginRangeRepo := repository.NewMarginRangeRepository(db)
	taxClassRepo := repository.NewTaxClassRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	productSvc := service.NewProductService(productRepo, marginRangeRepo, taxClassRepo, supplyItemRepo, historyRepo, engine, fetchers, service.PricingDefaults{
		TaxClassName:  cfg.DefaultTaxClassName,
		TaxPercentage: cfg.DefaultTaxPercentage,
	})
	syncSvc := service.NewSupplySyncService(productRepo, supplyItemRepo, marginRangeRepo, historyRepo, productSvc)

	summary, err := syncSvc.Reconcile(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation pass failed")
	}
	log.Info().
		Int("processed", summary.Processed).
		Int("switched", summary.Switched).
		Int("disabled", summary.Disabled).
		Int("updated", summary.Updated).
		Int("failed", summary.Failed).
		Msg("reconciliation pass complete")
}
