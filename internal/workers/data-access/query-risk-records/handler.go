package queryriskrecords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/metrics"
	"lepto-risk-workers/internal/models"
)

const (
	TaskType = "query-risk-records"
)

var (
	ErrInvalidQueryType = errors.New("INVALID_QUERY_TYPE")
	ErrFetchFailed      = errors.New("TRANSPORT_FAILURE")
)

type Handler struct {
	config *Config
	source RecordSource
	logger logger.Logger
	errors *apperrors.ErrorHandler
}

func NewHandler(config *Config, source RecordSource, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		source: source,
		logger: scoped,
		errors: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, h.toStandardError(err))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	start := time.Now()
	output := &Output{Source: h.source.Name(), Records: []models.RiskRecord{}}

	queryType := models.QueryType(input.QueryType)
	if queryType == "" {
		queryType = models.QueryTypeAllRecords
	}

	switch queryType {
	case models.QueryTypeAllRecords:
		records, err := h.source.FetchAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		if len(input.Countries) > 0 || input.Year != nil {
			records = filterAll(records, input.Countries, input.Year)
		}
		output.Records = records

	case models.QueryTypeRecordsByCountry:
		if len(input.Countries) == 0 {
			return nil, fmt.Errorf("%w: countries are required for %s", ErrInvalidQueryType, queryType)
		}
		for _, country := range input.Countries {
			records, err := h.source.FetchByCountry(ctx, country, input.Year)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
			}
			output.Records = append(output.Records, records...)
		}

	case models.QueryTypeDistinctCountries:
		countries, err := h.source.Countries(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		output.Countries = countries
		output.RowCount = len(countries)

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryType, input.QueryType)
	}

	if queryType != models.QueryTypeDistinctCountries {
		output.RowCount = len(output.Records)
		metrics.RecordsFetched.WithLabelValues(output.Source).Observe(float64(output.RowCount))
	}
	output.QueryExecutionTime = time.Since(start).Milliseconds()
	return output, nil
}

// filterAll keeps every country when none is given.
func filterAll(records []models.RiskRecord, countries []string, year *int) []models.RiskRecord {
	if len(countries) > 0 {
		return Filter(records, countries, year)
	}
	out := []models.RiskRecord{}
	for _, r := range records {
		if year == nil || r.Year == *year {
			out = append(out, r)
		}
	}
	return out
}

func (h *Handler) toStandardError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidQueryType):
		return apperrors.NewInvalidQueryTypeError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError(TaskType)
	case errors.Is(err, ErrFetchFailed):
		return apperrors.NewTransportFailureError(h.source.Name(), err)
	default:
		return apperrors.NewInternalError(err)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
