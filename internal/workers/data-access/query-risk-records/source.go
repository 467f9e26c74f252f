package queryriskrecords

import (
	"context"

	"lepto-risk-workers/internal/models"
)

// RecordSource is the read-only record store the engine queries.
type RecordSource interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.RiskRecord, error)
	FetchByCountry(ctx context.Context, country string, year *int) ([]models.RiskRecord, error)
	Countries(ctx context.Context) ([]string, error)
}

// MemorySource serves a fixed record sequence.
type MemorySource struct {
	records []models.RiskRecord
}

func NewMemorySource(records []models.RiskRecord) *MemorySource {
	copied := make([]models.RiskRecord, len(records))
	copy(copied, records)
	return &MemorySource{records: copied}
}

func (s *MemorySource) Name() string { return "memory" }

func (s *MemorySource) FetchAll(ctx context.Context) ([]models.RiskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.RiskRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemorySource) FetchByCountry(ctx context.Context, country string, year *int) ([]models.RiskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := Filter(s.records, []string{country}, year)
	SortRecords(out)
	return out, nil
}

func (s *MemorySource) Countries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DistinctCountries(s.records), nil
}
