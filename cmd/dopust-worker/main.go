package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dopust/internal/amqp"
	"dopust/internal/cli"
	applog "dopust/internal/log"
	"dopust/internal/services"
	"dopust/internal/timesheet/tempo"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker, os.Getenv("LOG_LEVEL"))

	logger.Info("Starting dopust-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	tempoClient := tempo.NewClient(cfg.JiraURL, cfg.JiraAPIToken)
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 15*time.Second)
	account, err := tempoClient.Myself(probeCtx)
	cancelProbe()
	if err != nil {
		logger.Error("Timesheet authentication probe failed", "error", err, "url", cfg.JiraURL)
		os.Exit(1)
	}
	logger.Info("Authenticated against timesheet service", "account", account)

	storeResult := cli.OpenSnapshotStore(context.Background(), logger, cfg)
	defer func() {
		if storeResult.Cleanup != nil {
			if err := storeResult.Cleanup(); err != nil {
				logger.Error("Snapshot store close error", "error", err)
			}
		}
	}()

	snapshots := services.NewSnapshotService(tempoClient, storeResult.Store)
	processor := services.NewRefreshProcessor(snapshots, storeResult.Store, services.RefreshProcessorConfig{
		ScanInterval: cfg.RefreshInterval,
		SnapshotTTL:  cfg.SnapshotTTL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Queued refresh messages are optional; the periodic stale scan keeps
	// snapshots fresh even when the broker is down.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on the periodic scan only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			go func() {
				handler := func(msg *amqp.SnapshotRefreshMessage) error {
					return processor.HandleRefresh(ctx, msg)
				}
				if err := amqpClient.ConsumeSnapshotRefresh(ctx, handler); err != nil {
					if !errors.Is(err, context.Canceled) {
						logger.Error("Message consumption failed", "error", err)
					}
					cancel()
				}
			}()
			logger.Info("Consuming refresh messages", "queue", cfg.AMQPQueue)
		}
	}

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start refresh processor", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Warn("Worker context cancelled")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := processor.Stop(stopCtx); err != nil {
		logger.Error("Refresh processor stop error", "error", err)
	}
	cancel()

	logger.Info("Worker stopped gracefully")
}
