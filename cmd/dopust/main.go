package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"dopust/internal/amqp"
	"dopust/internal/cli"
	apphttp "dopust/internal/http"
	applog "dopust/internal/log"
	"dopust/internal/services"
	"dopust/internal/timesheet"
	"dopust/internal/timesheet/googlecal"
	"dopust/internal/timesheet/seed"
	"dopust/internal/timesheet/tempo"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	// The original service refuses to start when the timesheet credentials
	// do not work; keep that behavior so misconfiguration surfaces at boot.
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

	// Holiday fallback for day classifications: the Google feed when an API
	// key is configured, otherwise the embedded seed calendar.
	var holidaySource timesheet.HolidaySource
	if cfg.GoogleHolidaysAPIKey != "" {
		feed, err := googlecal.NewFeed(context.Background(), cfg.GoogleHolidaysAPIKey, cfg.GoogleHolidaysCalendarID)
		if err != nil {
			logger.Warn("Google holiday calendar unavailable, using embedded seed", "error", err)
		} else {
			holidaySource = feed
			logger.Info("Using Google holiday calendar", "calendar_id", cfg.GoogleHolidaysCalendarID)
		}
	}
	if holidaySource == nil {
		cal, err := seed.NewCalendar()
		if err != nil {
			logger.Error("Failed to load embedded holiday seed", "error", err)
			os.Exit(1)
		}
		holidaySource = cal
	}
	holidays := timesheet.HolidayDayTypes{Source: holidaySource}

	// AMQP is optional: without it stale snapshots are only picked up by the
	// worker's periodic scan instead of on demand.
	var publisher services.RefreshPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, snapshot refreshes degrade to the periodic scan", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP publisher",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	policy, err := services.GetRefreshChecker(cfg.RefreshPolicy)
	if err != nil {
		logger.Error("Invalid refresh policy", "error", err)
		os.Exit(1)
	}

	reports := services.NewReportService(
		tempoClient,
		tempoClient,
		holidays,
		storeResult.Store,
		publisher,
		services.ReportServiceConfig{
			SnapshotTTL: cfg.SnapshotTTL,
			Policy:      policy,
		},
	)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		HashSecret:         cfg.HashSecretKey,
		CacheTTL:           cfg.CacheTTL,
		CacheMaxEntries:    cfg.CacheMaxEntries,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DefaultGridBudget:  cfg.DefaultGridBudget,
	}, reports, reports, tempoClient, storeResult.Store)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if storeResult.Cleanup != nil {
			if err := storeResult.Cleanup(); err != nil {
				logger.Error("Snapshot store close error", "error", err)
			}
		}
	})

	logger.Info("Starting dopust server",
		"port", cfg.Port,
		"backend_type", cfg.SnapshotBackend,
		"amqp_enabled", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
