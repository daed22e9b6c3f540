package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-crm/internal/app"
	"github.com/odyssey-erp/odyssey-crm/internal/masterdata/taxes"
	"github.com/odyssey-erp/odyssey-crm/internal/observability"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/db"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/migrate"
	"github.com/odyssey-erp/odyssey-crm/internal/sales/documents"
	"github.com/odyssey-erp/odyssey-crm/internal/sales/export"
	"github.com/odyssey-erp/odyssey-crm/jobs"
	"github.com/odyssey-erp/odyssey-crm/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.MigrateOnStart {
		if err := migrate.Up(dbpool); err != nil {
			logger.Error("apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	taxCache := cache.NewJSONCache(redisClient, "odyssey:taxes", cfg.TaxCacheTTL)
	taxService := taxes.NewService(taxes.NewRepository(dbpool), taxCache, jobClient, logger)
	taxHandler := taxes.NewHandler(logger, taxService)

	var renderer export.HTMLRenderer
	checks := map[string]app.Pinger{
		"postgres": dbpool,
		"redis":    app.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}
	if cfg.GotenbergURL != "" {
		gotenberg := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
		renderer = gotenberg
		checks["gotenberg"] = gotenberg
	}
	exporter := export.NewExporter(renderer, logger)

	documentService := documents.NewService(documents.NewRepository(dbpool), taxService, logger)
	documentHandler := documents.NewHandler(logger, documentService, exporter)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          observability.NewMetrics(),
		TaxHandler:       taxHandler,
		DocumentsHandler: documentHandler,
		JobHandler:       jobHandler,
		Checks:           checks,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
