package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetmon/fleetmon/internal/api"
	"github.com/fleetmon/fleetmon/internal/archive"
	"github.com/fleetmon/fleetmon/internal/auth"
	"github.com/fleetmon/fleetmon/internal/config"
	"github.com/fleetmon/fleetmon/internal/llm"
	"github.com/fleetmon/fleetmon/internal/nlq"
	"github.com/fleetmon/fleetmon/internal/observability"
	s3store "github.com/fleetmon/fleetmon/internal/storage/s3"
	"github.com/fleetmon/fleetmon/internal/store/postgres"
)

func main() {
	cfg, err := config.LoadFromEnv("fleetmon-api")
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

	repo := postgres.NewRepository(db)

	var asker api.Asker
	if cfg.AI.Enabled {
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		})
		if err != nil {
			logger.Error("failed to initialize llm client", slog.Any("error", err))
			os.Exit(1)
		}
		asker = &nlq.Pipeline{
			Generator:   nlq.NewGenerator(client),
			Static:      nlq.NewStaticValidator(),
			Semantic:    nlq.NewSemanticValidator(client),
			Executor:    nlq.NewExecutor(db, cfg.Ask.QueryTimeout, cfg.Ask.RowCap),
			Summarizer:  nlq.NewSummarizer(client, cfg.Ask.PreviewRows),
			PreviewRows: cfg.Ask.PreviewRows,
			Logger:      logger,
		}
	}

	deps := api.Dependencies{
		Logger:            logger,
		Store:             repo,
		Ask:               asker,
		Readiness:         api.CombineReadinessChecks(api.CheckStore(repo)),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Archive.Enabled {
		objectStore, err := s3store.New(context.Background(), cfg.ObjectStore)
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		archiver := archive.NewService(repo, objectStore, cfg.Archive, logger)
		go func() {
			if err := archiver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("archive worker failed", slog.Any("error", err))
			}
		}()
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
