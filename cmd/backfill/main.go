package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/bronze"
	"github.com/zachdean/ynab-reporting-pipeline/internal/config"
	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/logger"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/ynab"
)

func main() {
	log := logger.New()

	maxDate := flag.String("max-date", "", "latest budget month to backfill, YYYY-MM-DD (default: current month)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	now := time.Now().UTC()
	limit := dates.FirstOfMonth(now)
	if *maxDate != "" {
		parsed, err := dates.ParseDay(*maxDate)
		if err != nil {
			log.Fatal().Err(err).Str("max_date", *maxDate).Msg("Invalid --max-date")
		}
		limit = dates.FirstOfMonth(parsed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, err := storage.NewGCSStore(ctx, cfg.StorageBucket, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}
	defer store.Close()

	client := ynab.NewClient(cfg.BaseEndpoint, cfg.BudgetID, cfg.UserToken)
	ingestor := bronze.NewIngestor(client, store)
	normalizer := silver.NewNormalizer(store)

	months, err := client.ListMonths(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list budget months")
	}

	log.Info().Int("months", len(months)).Str("max_month", dates.FormatDay(limit)).Msg("Starting backfill")

	count := 0
	for _, summary := range months {
		month, err := dates.ParseDay(summary.Month)
		if err != nil {
			log.Fatal().Err(err).Str("month", summary.Month).Msg("Ledger returned an invalid month")
		}
		if month.After(limit) {
			continue
		}

		monthKey := dates.FormatDay(month)
		if _, err := ingestor.LoadBudgetMonth(ctx, month, now); err != nil {
			log.Fatal().Err(err).Str("month", monthKey).Msg("Failed to extract budget month")
		}
		if _, err := normalizer.TransformBudgetMonth(ctx, monthKey); err != nil {
			log.Fatal().Err(err).Str("month", monthKey).Msg("Failed to normalize budget month")
		}

		log.Info().Str("month", monthKey).Msg("Backfilled budget month")
		count++
	}

	log.Info().Int("backfilled", count).Msg("Backfill finished")
	fmt.Println("Backfill completed successfully.")
}
