package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/amqp"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/bankfeed/memory"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/config"
	apphttp "github.com/Debashish4357/Personal-Finance-Aggregator/internal/http"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/scheduler"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/services"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
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
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP alert notifications enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP URL not set, alert notifications disabled")
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

	srv := apphttp.NewServer(":"+cfg.Port, store, transactions, syncService)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Error("Scheduler shutdown error", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting pfa server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
