package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/amqp"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/bankfeed/memory"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/config"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/scheduler"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/services"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

// sync-worker runs the scheduled sync workflow without the HTTP API. Useful
// when the API and the background sync are deployed as separate processes
// sharing the same database file.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting sync-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled, alerts are stored but not published")
	}

	feed := memory.New()
	transactions := services.NewTransactionService(store)
	dedup := services.NewDeduplicator(store)
	reconciler := services.NewBudgetReconciler(store)
	alerts := services.NewAlertGenerator(store, amqpClient)
	syncService := services.NewSyncService(store, feed, transactions, dedup, reconciler, alerts)

	sched := scheduler.New(syncService.FullSyncWorkflow, scheduler.Config{
		Interval:      cfg.SyncInterval,
		DailyAtHour:   cfg.DailySyncHour,
		DailyAtMinute: cfg.DailySyncMin,
	})
	if err := sched.Start(context.Background()); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	logger.Info("Sync scheduler started",
		"interval", cfg.SyncInterval,
		"daily_at_hour", cfg.DailySyncHour,
		"sqlite_db", cfg.SQLiteDBPath)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("Scheduler shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("Sync-worker stopped gracefully")
}
