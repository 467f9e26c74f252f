package queryriskrecords

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/models"
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(createTestConfig(), NewMemorySource(sampleRecords()), createTestLogger(t))
	ctx := context.Background()

	tests := []struct {
		name  string
		input *Input
		rows  int
	}{
		{"default all records", &Input{}, 5},
		{"all records filtered", &Input{QueryType: "all_records", Countries: []string{"france", "Spain"}}, 3},
		{"all records by year", &Input{Year: models.Int(2010)}, 2},
		{"by country", &Input{QueryType: "records_by_country", Countries: []string{"Germany"}}, 2},
		{"by country and year", &Input{QueryType: "records_by_country", Countries: []string{"Germany", "France"}, Year: models.Int(2015)}, 1},
		{"no data is not an error", &Input{Countries: []string{"Malta"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, out.RowCount)
			assert.Len(t, out.Records, tt.rows)
			assert.Equal(t, "memory", out.Source)
		})
	}
}

func TestHandler_Execute_DistinctCountries(t *testing.T) {
	h := NewHandler(createTestConfig(), NewMemorySource(sampleRecords()), createTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{QueryType: "distinct_countries"})
	require.NoError(t, err)
	assert.Equal(t, []string{"France", "Germany", "Spain"}, out.Countries)
	assert.Equal(t, 3, out.RowCount)
}

func TestHandler_Execute_Errors(t *testing.T) {
	failing := &countingSource{MemorySource: NewMemorySource(nil), err: errors.New("timeout")}
	h := NewHandler(createTestConfig(), failing, createTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	require.ErrorIs(t, err, ErrFetchFailed)
	stdErr := h.toStandardError(err)
	assert.Equal(t, apperrors.ErrCodeTransportFailure, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, 0, apperrors.ConvertToBPMNError(stdErr).Retries)

	_, err = h.Execute(context.Background(), &Input{QueryType: "drop_table"})
	require.ErrorIs(t, err, ErrInvalidQueryType)
	assert.Equal(t, apperrors.ErrCodeInvalidQueryType, h.toStandardError(err).Code)

	_, err = h.Execute(context.Background(), &Input{QueryType: "records_by_country"})
	assert.ErrorIs(t, err, ErrInvalidQueryType)

	slow := &countingSource{MemorySource: NewMemorySource(nil), err: context.DeadlineExceeded}
	h = NewHandler(createTestConfig(), slow, createTestLogger(t))
	_, err = h.Execute(context.Background(), &Input{})
	require.ErrorIs(t, err, ErrFetchFailed)
	stdErr = h.toStandardError(err)
	assert.Equal(t, apperrors.ErrCodeQueryTimeout, stdErr.Code)
	assert.Equal(t, 2, apperrors.ConvertToBPMNError(stdErr).Retries)
}
