package queryriskrecords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/metrics"
	"lepto-risk-workers/internal/models"
)

const cacheKeyPrefix = "lepto:records:"

// CachedSource keeps fetched record sets in Redis so repeated interactions
// reuse an already fetched copy. Cache failures fall through to the wrapped
// source and are never returned to the caller.
type CachedSource struct {
	next   RecordSource
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next RecordSource, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"source": next.Name(), "component": "record-cache"}),
	}
}

func (s *CachedSource) Name() string { return s.next.Name() }

func (s *CachedSource) FetchAll(ctx context.Context) ([]models.RiskRecord, error) {
	var records []models.RiskRecord
	err := s.cached(ctx, cacheKeyPrefix+"all", &records, func() (interface{}, error) {
		return s.next.FetchAll(ctx)
	})
	return records, err
}

func (s *CachedSource) FetchByCountry(ctx context.Context, country string, year *int) ([]models.RiskRecord, error) {
	key := cacheKeyPrefix + "country:" + strings.ToLower(strings.TrimSpace(country))
	if year != nil {
		key += fmt.Sprintf(":%d", *year)
	}
	var records []models.RiskRecord
	err := s.cached(ctx, key, &records, func() (interface{}, error) {
		return s.next.FetchByCountry(ctx, country, year)
	})
	return records, err
}

func (s *CachedSource) Countries(ctx context.Context) ([]string, error) {
	var countries []string
	err := s.cached(ctx, cacheKeyPrefix+"countries", &countries, func() (interface{}, error) {
		return s.next.Countries(ctx)
	})
	return countries, err
}

// Invalidate drops every cached record set.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, cacheKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// cached decodes key into dst on a hit; on a miss it calls load, stores the
// result and decodes it into dst.
func (s *CachedSource) cached(ctx context.Context, key string, dst interface{}, load func() (interface{}, error)) error {
	raw, err := s.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			metrics.RecordCacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		s.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
		metrics.RecordCacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookups.WithLabelValues("miss").Inc()
	default:
		s.logger.Warn("record cache unavailable", map[string]interface{}{"key": key, "error": err})
		metrics.RecordCacheLookups.WithLabelValues("error").Inc()
	}

	value, err := load()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to populate record cache", map[string]interface{}{"key": key, "error": err})
	}
	return json.Unmarshal(payload, dst)
}
