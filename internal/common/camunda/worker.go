package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"lepto-risk-workers/internal/common/config"
	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/metrics"
	"lepto-risk-workers/internal/common/observability"
)

// HandlerFunc is the signature every worker Handle method satisfies.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Instrument records the processing duration of every job.
func Instrument(taskType string, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		defer func() {
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		}()
		handler(client, job)
	}
}

// InputValidator checks raw job variables for a task type.
type InputValidator interface {
	ValidateInput(taskType string, variables []byte) error
}

// Validate rejects jobs whose variables fail the activity input schema
// before handler sees them. Rejected jobs raise INVALID_INPUT.
func Validate(taskType string, v InputValidator, errs *apperrors.ErrorHandler, obs *observability.Observability, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		ctx := context.Background()
		if err := v.ValidateInput(taskType, []byte(job.GetVariables())); err != nil {
			obs.RecordJobProcessed(ctx, taskType, "rejected")
			errs.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(err.Error()))
			return
		}
		obs.RecordJobProcessed(ctx, taskType, "accepted")
		handler(client, job)
	}
}

// StartWorker opens a job worker for taskType. It returns nil when the
// worker is disabled.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(taskType, handler))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}
