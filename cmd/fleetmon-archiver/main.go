package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetmon/fleetmon/internal/archive"
	"github.com/fleetmon/fleetmon/internal/config"
	"github.com/fleetmon/fleetmon/internal/observability"
	s3store "github.com/fleetmon/fleetmon/internal/storage/s3"
	"github.com/fleetmon/fleetmon/internal/store/postgres"
)

func main() {
	once := flag.Bool("once", false, "run a single archive pass and exit")
	flag.Parse()

	cfg, err := config.LoadFromEnv("fleetmon-archiver")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, err := postgres.Open(context.Background(), postgres.DBConfig{
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open fleet db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	objectStore, err := s3store.New(context.Background(), cfg.ObjectStore)
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}

	svc := archive.NewService(postgres.NewRepository(db), objectStore, cfg.Archive, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		summary, err := svc.RunOnce(ctx)
		if err != nil {
			logger.Error("archive pass failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("archive pass finished",
			slog.Int("batches", summary.Batches),
			slog.Int64("archived", summary.ArchivedReadings),
			slog.Int64("deleted", summary.DeletedReadings),
		)
		return
	}

	logger.Info("archive worker started")
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("archive worker failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("archive worker stopped")
}
