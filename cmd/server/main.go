package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/zachdean/ynab-reporting-pipeline/internal/bronze"
	"github.com/zachdean/ynab-reporting-pipeline/internal/config"
	"github.com/zachdean/ynab-reporting-pipeline/internal/gold"
	"github.com/zachdean/ynab-reporting-pipeline/internal/logger"
	"github.com/zachdean/ynab-reporting-pipeline/internal/orchestrator"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/validate"
	"github.com/zachdean/ynab-reporting-pipeline/internal/ynab"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	store, err := storage.NewGCSStore(ctx, cfg.StorageBucket, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}
	defer store.Close()

	client := ynab.NewClient(cfg.BaseEndpoint, cfg.BudgetID, cfg.UserToken)
	activities := orchestrator.BuildActivities(
		bronze.NewIngestor(client, store),
		silver.NewNormalizer(store),
		gold.NewServer(store),
		validate.NewValidator(store),
		time.Now)

	orch := orchestrator.New(orchestrator.NewRunStore(), activities, orchestrator.Options{
		StageTimeout: cfg.StageTimeout,
	})

	// Scheduled runs; an in-flight run makes the tick a no-op.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Schedule, func() {
		runID, err := orch.Trigger(ctx)
		if errors.Is(err, orchestrator.ErrRunInFlight) {
			log.Info().Msg("Skipping scheduled run, another run is in flight")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to trigger scheduled run")
			return
		}
		log.Info().Str("run_id", runID).Msg("Scheduled run triggered")
	})
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Schedule).Msg("Invalid pipeline schedule")
	}
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:               "ynab-reporting-pipeline",
		DisableStartupMessage: true,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Post("/api/runs", func(c *fiber.Ctx) error {
		runID, err := orch.Trigger(ctx)
		if errors.Is(err, orchestrator.ErrRunInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"run_id": runID})
	})

	app.Get("/api/runs", func(c *fiber.Ctx) error {
		runs, err := orch.Runs().ListRuns(c.Context(), c.QueryInt("limit", 20))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(runs)
	})

	app.Get("/api/runs/:id", func(c *fiber.Ctx) error {
		run, err := orch.Runs().GetRun(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(run)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("schedule", cfg.Schedule).Msg("Server started")
		return app.Listen(":" + cfg.HTTPPort)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		<-scheduler.Stop().Done()
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}
