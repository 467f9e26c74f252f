// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lepto-risk-workers/internal/common/aws"
	"lepto-risk-workers/internal/common/camunda"
	"lepto-risk-workers/internal/common/config"
	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/observability"
	"lepto-risk-workers/internal/engine"
	"lepto-risk-workers/pkg/registry"

	// Data Access Workers
	qrr "lepto-risk-workers/internal/workers/data-access/query-risk-records"

	// Risk Query Workers
	bs "lepto-risk-workers/internal/workers/risk-query/build-series"
	cq "lepto-risk-workers/internal/workers/risk-query/classify-query"
	cs "lepto-risk-workers/internal/workers/risk-query/compute-statistics"
	ee "lepto-risk-workers/internal/workers/risk-query/extract-entities"

	// Infrastructure Workers
	br "lepto-risk-workers/internal/workers/infrastructure/build-report"

	// Communication Workers
	nra "lepto-risk-workers/internal/workers/communication/notify-risk-alert"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logging config is not known yet
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("source", cfg.Engine.Source))

	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("otel exporter unavailable, continuing without it", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	reg, err := registry.LoadOrDefault(cfg.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	// --- Record source with retry ---
	var backend *engine.Backend
	err = retryWithBackoff(func() error {
		b, err := engine.OpenSource(ctx, cfg, log)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := b.Ping(pingCtx); err != nil {
			b.Close()
			return err
		}
		backend = b
		return nil
	}, 5, 2*time.Second, zapLog, "record source connection")
	if err != nil {
		zapLog.Fatal("record source unavailable", zap.Error(err))
	}
	defer backend.Close()

	// --- Zeebe client ---
	client, err := camunda.Connect(ctx, camunda.ClientConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe connection failed", zap.Error(err))
	}
	zeebeClient := client.Zeebe()

	errs := apperrors.NewErrorHandler(log)
	var workers []worker.JobWorker
	start := func(taskType string, handler camunda.HandlerFunc) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if _, configured := cfg.Workers[taskType]; !configured {
			if activity, ok := reg.Find(taskType); ok {
				wcfg.Timeout = int(activity.TimeoutDuration(30 * time.Second).Milliseconds())
			}
		}
		validated := camunda.Validate(taskType, reg, errs, obs, handler)
		if w := camunda.StartWorker(zeebeClient, taskType, wcfg, validated, log); w != nil {
			workers = append(workers, w)
		}
	}

	// Extract Entities
	if taskType := ee.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := ee.NewHandler(ee.LoadConfig(), log)
		start(taskType, handler.Handle)
	}

	// Classify Query
	if taskType := cq.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := cq.NewHandler(cq.LoadConfig(), log)
		start(taskType, handler.Handle)
	}

	// Query Risk Records
	if taskType := qrr.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := qrr.NewHandler(qrr.LoadConfig(), backend.Source, log)
		start(taskType, handler.Handle)
	}

	// Build Series
	if taskType := bs.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := bs.NewHandler(bs.LoadConfig(), log)
		start(taskType, handler.Handle)
	}

	// Compute Statistics
	if taskType := cs.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := cs.NewHandler(cs.LoadConfig(), log)
		start(taskType, handler.Handle)
	}

	// Build Report
	if taskType := br.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := br.NewHandler(br.LoadConfig(), log)
		start(taskType, handler.Handle)
	}

	// Notify Risk Alert
	if taskType := nra.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		opts := nra.HandlerOptions{
			Config: nra.LoadConfig(cfg.Notifications, config.GetDuration(wcfg.Timeout)),
			Logger: log,
		}
		region := cfg.Notifications.AWS.Region
		if cfg.Notifications.SES.Enabled {
			sesClient, err := aws.NewSESClient(ctx, region)
			if err != nil {
				zapLog.Fatal("failed to create SES client", zap.Error(err))
			}
			opts.Email = sesClient
		}
		if cfg.Notifications.SNS.Enabled {
			snsClient, err := aws.NewSNSClient(ctx, region)
			if err != nil {
				zapLog.Fatal("failed to create SNS client", zap.Error(err))
			}
			opts.Alerts = snsClient
		}
		handler, err := nra.NewHandler(opts)
		if err != nil {
			zapLog.Fatal("failed to create notify-risk-alert handler", zap.Error(err))
		}
		start(taskType, handler.Handle)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			status, code := "ready", http.StatusOK
			if err := backend.Ping(checkCtx); err != nil {
				status, code = "record source unavailable", http.StatusServiceUnavailable
			} else if err := client.HealthCheck(checkCtx); err != nil {
				status, code = "zeebe unavailable", http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}

	if err := client.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
