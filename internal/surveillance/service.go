package surveillance

import (
	"context"
	"errors"
	"time"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/metrics"
	"lepto-risk-workers/internal/models"
)

// Service answers dashboard reads over a Store. Every read fetches the
// full dataset; failures come back as *apperrors.StandardError.
type Service struct {
	store   Store
	timeout time.Duration
	logger  logger.Logger
}

func NewService(store Store, timeout time.Duration, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		store:   store,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "surveillance"}),
	}
}

// Records returns the whole dataset ordered by year, then country code.
func (s *Service) Records(ctx context.Context) ([]models.SurveillanceRecord, error) {
	return s.fetch(ctx, "records")
}

func (s *Service) Table(ctx context.Context, q TableQuery) ([]models.SurveillanceRecord, error) {
	records, err := s.fetch(ctx, "table")
	if err != nil {
		return nil, err
	}
	rows, err := Table(records, q)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return rows, nil
}

func (s *Service) Map(ctx context.Context, year *int) (models.SurveillanceMap, error) {
	records, err := s.fetch(ctx, "map")
	if err != nil {
		return models.SurveillanceMap{}, err
	}
	return Map(records, year), nil
}

func (s *Service) Countries(ctx context.Context) ([]models.SurveillanceCountry, error) {
	records, err := s.fetch(ctx, "countries")
	if err != nil {
		return nil, err
	}
	return Countries(records), nil
}

// Series fails with NO_DATA_FOR_SELECTION for an unknown country code.
func (s *Service) Series(ctx context.Context, code string) (models.SurveillanceSeries, error) {
	records, err := s.fetch(ctx, "series")
	if err != nil {
		return models.SurveillanceSeries{}, err
	}
	series, ok := Series(records, code)
	if !ok {
		return series, apperrors.NewNoDataForSelectionError([]string{code}, nil)
	}
	return series, nil
}

func (s *Service) fetch(ctx context.Context, view string) ([]models.SurveillanceRecord, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	records, err := s.store.FetchAll(ctx)
	if err != nil {
		metrics.SurveillanceViews.WithLabelValues(view, "error").Inc()
		s.logger.Error("surveillance fetch failed", map[string]interface{}{
			"store": s.store.Name(),
			"view":  view,
			"error": err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewQueryTimeoutError(s.store.Name())
		}
		return nil, apperrors.NewTransportFailureError(s.store.Name(), err)
	}
	metrics.SurveillanceViews.WithLabelValues(view, "success").Inc()
	return records, nil
}
