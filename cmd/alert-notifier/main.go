package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/amqp"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/config"
)

// alert-notifier consumes alert notification messages from the queue. The
// handler currently logs each notification; delivery channels (email, push)
// hook in here.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting alert-notifier")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert-notifier")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	err = client.ConsumeAlertNotifications(ctx, func(msg *amqp.AlertNotificationMessage) error {
		logger.Info("Alert notification received",
			"alert_id", msg.AlertID,
			"user_id", msg.UserID,
			"kind", msg.Kind,
			"message", msg.Message)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("Consumer error", "error", err)
		os.Exit(1)
	}

	logger.Info("Alert-notifier stopped gracefully")
}
