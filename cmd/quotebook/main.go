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

	"golang.org/x/sync/errgroup"

	"github.com/quotebook/quotebook/internal/app"
	"github.com/quotebook/quotebook/internal/billing"
	"github.com/quotebook/quotebook/internal/billing/packages"
	"github.com/quotebook/quotebook/internal/export"
	"github.com/quotebook/quotebook/internal/observability"
	"github.com/quotebook/quotebook/internal/platform/cache"
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
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("quotebook exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	catalog, err := packages.Default()
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	repo := billing.NewRepository(catalog, billing.SeedState(cfg.SeedSampleData))
	billingService := billing.NewService(repo, logger, billing.WithRecorder(metrics))
	billingHandler := billing.NewHandler(logger, billingService)

	var exportHandler *export.Handler
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, document export disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		store := export.NewStatusStore(redisClient, cfg.ExportStatusTTL)
		queue := export.NewClient(cache.QueueOpts(cfg.RedisAddr), store)
		defer func() {
			if err := queue.Close(); err != nil {
				logger.Warn("export queue close", slog.Any("error", err))
			}
		}()
		exportHandler = export.NewHandler(logger, billingService, queue, store)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		BillingHandler: billingHandler,
		ExportHandler:  exportHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
