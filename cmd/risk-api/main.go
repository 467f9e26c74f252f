// cmd/risk-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lepto-risk-workers/internal/api"
	"lepto-risk-workers/internal/chat"
	"lepto-risk-workers/internal/common/config"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/observability"
	"lepto-risk-workers/internal/common/validation"
	"lepto-risk-workers/internal/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting risk API...",
		zap.String("source", cfg.Engine.Source),
		zap.Int("port", cfg.API.Port),
	)

	obs, err := observability.New("risk-api")
	if err != nil {
		zapLog.Warn("otel exporter unavailable, continuing without it", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	backend, err := engine.OpenSource(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("record source unavailable", zap.Error(err))
	}
	defer backend.Close()

	validator, err := validation.NewValidator(cfg.Engine.MaxCompareCountries)
	if err != nil {
		zapLog.Fatal("schema compilation failed", zap.Error(err))
	}

	eng := engine.FromConfig(cfg, backend.Source, obs, log)
	router := api.NewRouter(api.RouterConfig{
		Engine:       eng,
		Session:      chat.NewSession(eng, log),
		Surveillance: engine.SurveillanceFromConfig(cfg, backend, log),
		Validator:    validator,
		Logger:       log,
		Ready:        backend.Ping,
		Mode:         cfg.API.Mode,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Risk API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("Risk API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down server", zap.Error(err))
	}

	zapLog.Info("Risk API stopped gracefully")
}
