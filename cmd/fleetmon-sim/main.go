package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetmon/fleetmon/internal/sim"
)

func main() {
	cfg, err := sim.LoadConfigFromEnv(os.LookupEnv)
	if err != nil {
		slog.Error("failed to load simulator config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	service, err := sim.NewService(cfg, logger, nil)
	if err != nil {
		logger.Error("failed to initialize simulator", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(
		"fleet simulator started",
		slog.String("api_url", cfg.APIBaseURL),
		slog.Int("devices", cfg.DeviceCount),
		slog.Duration("interval", cfg.Interval),
		slog.Int("spike_chance", cfg.SpikeChance),
	)

	err = service.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("fleet simulator stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("fleet simulator stopped")
}
