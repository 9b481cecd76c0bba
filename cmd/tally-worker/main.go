package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tally/internal/audit"
	"tally/internal/config"
	"tally/internal/events"
	"tally/internal/log"
)

// tally-worker consumes transaction events and appends them to the audit
// trail. It requires a configured AMQP broker.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent("worker")
	log.SetDefault(logger)

	logger.Info("Starting tally-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeTransactionEvents(gctx, func(event *events.TransactionEvent) error {
			entry := audit.FromEvent(event)
			if err := audit.Append(cfg.AuditDir, []audit.Entry{entry}); err != nil {
				logger.Error("Failed to append audit entry",
					"transaction_id", event.ID, "action", event.Action, "error", err)
				return err
			}
			logger.Info("Audit entry recorded",
				"transaction_id", event.ID, "action", event.Action)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
