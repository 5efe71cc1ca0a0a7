// Package main запускает HTTP-сервер кассы и склада магазина.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/shop-pos/internal/auth"
	"github.com/mmeshcher/shop-pos/internal/config"
	"github.com/mmeshcher/shop-pos/internal/handler"
	"github.com/mmeshcher/shop-pos/internal/metrics"
	"github.com/mmeshcher/shop-pos/internal/middleware"
	"github.com/mmeshcher/shop-pos/internal/shop"
	"github.com/mmeshcher/shop-pos/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		sugar.Warnw(".env load error", "error", err.Error())
	}

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage())
	if err != nil {
		sugar.Fatalw("storage initialization error", "driver", cfg.StorageDriver, "error", err.Error())
	}
	defer store.Close()

	collector := metrics.New()

	engine := shop.New(store,
		shop.WithLogger(logger),
		shop.WithRecorder(collector),
		shop.WithDataVersion(cfg.DataVersion),
		shop.WithAdminPassword(cfg.AdminPassword),
	)
	if err := engine.Init(ctx); err != nil {
		sugar.Fatalw("shop initialization error", "error", err.Error())
	}

	if cfg.AuthSecret == "" {
		sugar.Warn("AUTH_SECRET is not set, sessions will not survive a restart")
	}
	gate := auth.NewGate(store, engine.UserStore())
	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(engine, gate, logger, authMiddleware, handler.WithMetrics(collector))

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting shop server", "addr", cfg.RunAddress, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Остановка сервера по сигналу или ошибке в другой горутине.
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
