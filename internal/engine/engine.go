// Package engine composes the risk query stages in process: extraction,
// classification, record resolution, series building, statistics and the
// report. The same stages run as Zeebe workers under internal/workers.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/metrics"
	"lepto-risk-workers/internal/common/observability"
	"lepto-risk-workers/internal/models"
	queryriskrecords "lepto-risk-workers/internal/workers/data-access/query-risk-records"
	buildreport "lepto-risk-workers/internal/workers/infrastructure/build-report"
	buildseries "lepto-risk-workers/internal/workers/risk-query/build-series"
	classifyquery "lepto-risk-workers/internal/workers/risk-query/classify-query"
	computestatistics "lepto-risk-workers/internal/workers/risk-query/compute-statistics"
	extractentities "lepto-risk-workers/internal/workers/risk-query/extract-entities"
)

// DefaultMaxCompare caps explicit comparisons when Options.MaxCompare is unset.
const DefaultMaxCompare = 3

// Options configures New. Zero values fall back to the built-in defaults.
type Options struct {
	Source        queryriskrecords.RecordSource
	Vocabulary    models.Vocabulary
	MaxCompare    int
	Palette       []string
	FetchTimeout  time.Duration
	Logger        logger.Logger
	Observability *observability.Observability
}

// Engine runs risk queries over one RecordSource.
type Engine struct {
	source     queryriskrecords.RecordSource
	vocab      models.Vocabulary
	maxCompare int
	palette    []string
	timeout    time.Duration
	logger     logger.Logger
	obs        *observability.Observability
}

// New builds an Engine from opts.
func New(opts Options) *Engine {
	e := &Engine{
		source:     opts.Source,
		vocab:      opts.Vocabulary,
		maxCompare: opts.MaxCompare,
		palette:    opts.Palette,
		timeout:    opts.FetchTimeout,
		logger:     opts.Logger,
		obs:        opts.Observability,
	}
	if len(e.vocab) == 0 {
		e.vocab = models.DefaultVocabulary
	}
	if e.maxCompare <= 0 {
		e.maxCompare = DefaultMaxCompare
	}
	if len(e.palette) == 0 {
		e.palette = buildseries.DefaultPalette
	}
	if e.logger == nil {
		e.logger = logger.NewNoOpLogger()
	}
	e.logger = e.logger.WithFields(map[string]interface{}{"component": "engine"})
	return e
}

// Vocabulary returns the recognised countries in configured order.
func (e *Engine) Vocabulary() models.Vocabulary {
	return e.vocab
}

// Extract finds vocabulary countries and a year in message.
func (e *Engine) Extract(message string) models.ExtractedEntities {
	return extractentities.Extract(message, e.vocab)
}

// Classify rejects empty entities with NO_ENTITY_RECOGNIZED.
func (e *Engine) Classify(entities models.ExtractedEntities) (models.QueryMode, error) {
	mode, err := classifyquery.Classify(entities.Countries, entities.Year)
	if err != nil {
		return "", apperrors.NewNoEntityRecognizedError(e.vocab)
	}
	return mode, nil
}

// Records fetches the full record set.
func (e *Engine) Records(ctx context.Context) ([]models.RiskRecord, error) {
	ctx, cancel := e.fetchContext(ctx)
	defer cancel()

	records, err := e.source.FetchAll(ctx)
	if err != nil {
		return nil, e.transportError(err)
	}
	metrics.RecordsFetched.WithLabelValues(e.source.Name()).Observe(float64(len(records)))
	return records, nil
}

// Resolve fetches every record and filters it down to countries and year.
// No match is an empty, non-nil subset.
func (e *Engine) Resolve(ctx context.Context, countries []string, year *int) ([]models.RiskRecord, error) {
	records, err := e.Records(ctx)
	if err != nil {
		return nil, err
	}
	return queryriskrecords.Filter(records, countries, year), nil
}

// Render derives everything shown for one query from an already filtered
// subset. It does no I/O.
func (e *Engine) Render(mode models.QueryMode, countries []string, year *int, subset []models.RiskRecord) *models.QueryResult {
	series := buildseries.Build(subset, mode, countries)
	stats := computestatistics.Compute(series, countries)
	stats.Skipped = computestatistics.CountMalformed(subset)
	if stats.Skipped > 0 {
		metrics.MalformedRecords.Add(float64(stats.Skipped))
		e.logger.Warn("records without numeric risk excluded from statistics", map[string]interface{}{
			"skipped": stats.Skipped,
		})
	}

	report := buildreport.Format(&buildreport.Input{
		Mode:       mode,
		Countries:  countries,
		Year:       year,
		Records:    subset,
		Series:     series,
		Statistics: stats,
	})

	return &models.QueryResult{
		Entities:   models.ExtractedEntities{Countries: countries, Year: year},
		Mode:       mode,
		Records:    subset,
		Series:     series,
		Statistics: stats,
		Chart: models.ChartData{
			Labels:   series.Years(),
			Datasets: buildseries.Datasets(series, countries, e.palette),
			Domain:   computestatistics.YAxisDomain(series),
		},
		Report: report,
	}
}

// Ask runs a free-text message through the whole pipeline.
func (e *Engine) Ask(ctx context.Context, message string) (*models.QueryResult, error) {
	start := time.Now()

	entities := e.Extract(message)
	mode, err := e.Classify(entities)
	if err != nil {
		e.record(ctx, "none", err, start)
		return nil, err
	}

	result, err := e.run(ctx, mode, entities.Countries, entities.Year)
	e.record(ctx, string(mode), err, start)
	if err != nil {
		return nil, err
	}
	result.Message = message
	return result, nil
}

// Compare runs an explicit selection. At most MaxCompare countries are
// accepted and every one must be in the vocabulary.
func (e *Engine) Compare(ctx context.Context, countries []string, year *int) (*models.QueryResult, error) {
	start := time.Now()

	selection, err := classifyquery.ValidateSelection(countries, e.vocab, e.maxCompare)
	if err != nil {
		e.record(ctx, "none", err, start)
		if errors.Is(err, classifyquery.ErrNoCountries) {
			return nil, apperrors.NewInvalidSelectionError("select at least one country")
		}
		return nil, apperrors.NewInvalidSelectionError(err.Error())
	}

	mode, _ := classifyquery.Classify(selection, year)
	result, err := e.run(ctx, mode, selection, year)
	e.record(ctx, string(mode), err, start)
	return result, err
}

func (e *Engine) run(ctx context.Context, mode models.QueryMode, countries []string, year *int) (*models.QueryResult, error) {
	subset, err := e.Resolve(ctx, countries, year)
	if err != nil {
		return nil, err
	}
	if len(subset) == 0 {
		return nil, apperrors.NewNoDataForSelectionError(countries, year)
	}

	e.logger.Debug("query resolved", map[string]interface{}{
		"mode":      mode,
		"countries": countries,
		"records":   len(subset),
	})
	return e.Render(mode, countries, year, subset), nil
}

// Country returns one country's records ordered by year.
func (e *Engine) Country(ctx context.Context, country string) ([]models.RiskRecord, error) {
	ctx, cancel := e.fetchContext(ctx)
	defer cancel()

	records, err := e.source.FetchByCountry(ctx, strings.TrimSpace(country), nil)
	if err != nil {
		return nil, e.transportError(err)
	}
	return records, nil
}

// Countries returns the distinct countries present in the store, sorted.
func (e *Engine) Countries(ctx context.Context) ([]string, error) {
	ctx, cancel := e.fetchContext(ctx)
	defer cancel()

	countries, err := e.source.Countries(ctx)
	if err != nil {
		return nil, e.transportError(err)
	}
	return countries, nil
}

// Chat answers a message with the earliest record of the first recognised
// country. Only a failed fetch is an error.
func (e *Engine) Chat(ctx context.Context, message string) (models.ChatResponse, error) {
	entities := e.Extract(message)
	if entities.Empty() {
		return models.ChatResponse{Response: buildreport.NoEntityPrompt(e.vocab)}, nil
	}

	country := entities.Countries[0]
	records, err := e.Country(ctx, country)
	if err != nil {
		return models.ChatResponse{}, err
	}
	if len(records) == 0 {
		return models.ChatResponse{Response: buildreport.NotFoundText}, nil
	}

	first := records[0]
	return models.ChatResponse{
		Response: buildreport.Summary(country, &first),
		Data:     &first,
	}, nil
}

// Markers returns one map marker per vocabulary country. With a nil year
// each marker carries the country's latest record; otherwise its first
// record for that year, and countries without one carry no risk.
func (e *Engine) Markers(ctx context.Context, year *int) ([]models.MapMarker, error) {
	records, err := e.Records(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.RiskRecord, len(e.vocab))
	for _, r := range records {
		key := strings.ToLower(r.Country)
		cur, ok := latest[key]
		switch {
		case year != nil:
			if r.Year == *year && !ok {
				latest[key] = r
			}
		case !ok || r.Year > cur.Year:
			latest[key] = r
		}
	}

	markers := make([]models.MapMarker, 0, len(e.vocab))
	for _, country := range e.vocab {
		loc, _ := models.LocationFor(country)
		marker := models.MapMarker{Country: country, Location: loc}
		if r, ok := latest[strings.ToLower(country)]; ok {
			marker.Year = r.Year
			marker.RiskPercentage = r.RiskPercentage
			marker.RiskLevel = r.RiskLevel
			if marker.RiskLevel == "" && r.HasRisk() {
				marker.RiskLevel = computestatistics.RiskLevel(r.Risk())
			}
		}
		markers = append(markers, marker)
	}
	return markers, nil
}

// Prediction is a fixed stub; no model backs it.
func (e *Engine) Prediction() models.Prediction {
	return models.Prediction{Outbreak: false, Details: "No outbreak predicted"}
}

func (e *Engine) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

func (e *Engine) transportError(err error) error {
	e.logger.Error("record fetch failed", map[string]interface{}{
		"source": e.source.Name(),
		"error":  err.Error(),
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(e.source.Name())
	}
	return apperrors.NewTransportFailureError(e.source.Name(), err)
}

func (e *Engine) record(ctx context.Context, mode string, err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if stdErr, ok := apperrors.As(err); ok {
			outcome = strings.ToLower(string(stdErr.Code))
		}
	}
	metrics.RiskQueries.WithLabelValues(mode, outcome).Inc()
	e.obs.RecordQuery(ctx, mode, outcome, time.Since(start))
}
