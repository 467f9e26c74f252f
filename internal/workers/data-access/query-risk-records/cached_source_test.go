package queryriskrecords

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/models"
)

// countingSource records how often the wrapped store is hit.
type countingSource struct {
	*MemorySource
	calls int
	err   error
}

func (s *countingSource) FetchAll(ctx context.Context) ([]models.RiskRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.MemorySource.FetchAll(ctx)
}

func (s *countingSource) FetchByCountry(ctx context.Context, country string, year *int) ([]models.RiskRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.MemorySource.FetchByCountry(ctx, country, year)
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func TestCachedSource_HitAfterMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := &countingSource{MemorySource: NewMemorySource(sampleRecords())}

	cached := NewCachedSource(next, rdb, time.Minute, createTestLogger(t))
	ctx := context.Background()

	first, err := cached.FetchAll(ctx)
	require.NoError(t, err)
	second, err := cached.FetchAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.False(t, second[4].HasRisk(), "nil risk survives the cache")
	assert.True(t, mr.Exists("lepto:records:all"))

	ttl := mr.TTL("lepto:records:all")
	assert.Equal(t, time.Minute, ttl)
}

func TestCachedSource_PerCountryKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := &countingSource{MemorySource: NewMemorySource(sampleRecords())}
	cached := NewCachedSource(next, rdb, time.Minute, createTestLogger(t))
	ctx := context.Background()

	_, err := cached.FetchByCountry(ctx, "France", nil)
	require.NoError(t, err)
	_, err = cached.FetchByCountry(ctx, "FRANCE", nil)
	require.NoError(t, err)
	got, err := cached.FetchByCountry(ctx, "France", models.Int(2011))
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
	require.Len(t, got, 1)
	assert.True(t, mr.Exists("lepto:records:country:france:2011"))

	countries, err := cached.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"France", "Germany", "Spain"}, countries)

	require.NoError(t, cached.Invalidate(ctx))
	assert.Empty(t, mr.Keys())
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("lepto:records:all").SetErr(errors.New("connection refused"))

	next := &countingSource{MemorySource: NewMemorySource(sampleRecords())}
	cached := NewCachedSource(next, rdb, time.Minute, createTestLogger(t))

	records, err := cached.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, 1, next.calls)
}

func TestCachedSource_SourceErrorNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := &countingSource{MemorySource: NewMemorySource(nil), err: errors.New("db down")}
	cached := NewCachedSource(next, rdb, time.Minute, createTestLogger(t))

	_, err := cached.FetchAll(context.Background())
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("lepto:records:all"))
}
