package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ricevute/internal/config"
	applog "ricevute/internal/log"
	gsheet "ricevute/internal/sheets/google"
	"ricevute/internal/storage"
	"ricevute/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentExporter,
	})
	slog.SetDefault(logger.Logger)

	logger.Info("starting ricevute-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	if !cfg.SheetsConfigured() {
		logger.Error("Google Sheets not configured, nothing to export, set GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	// The worker reads the same database the extraction backend and
	// the server write to.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize SQLite repository", applog.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("failed to initialize Google Sheets client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exporter := worker.NewExporter(repo, repo, sheetsClient, cfg.ExportInterval)

	done := make(chan error, 1)
	go func() {
		done <- exporter.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
		<-done
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Error("exporter stopped", applog.FieldError, err.Error())
			os.Exit(1)
		}
	}

	logger.Info("worker stopped gracefully")
}
