package engine

import (
	"context"
	"fmt"
	"time"

	"lepto-risk-workers/internal/common/config"
	"lepto-risk-workers/internal/common/database"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/observability"
	"lepto-risk-workers/internal/models"
	"lepto-risk-workers/internal/surveillance"
	queryriskrecords "lepto-risk-workers/internal/workers/data-access/query-risk-records"
)

// Backend is an opened record source plus the connections behind it.
// Surveillance reads leptospirosis_data from the same store.
type Backend struct {
	Source       queryriskrecords.RecordSource
	Surveillance surveillance.Store
	checks []func(ctx context.Context) error
	closer []func() error
}

// Ping checks every connection the source depends on.
func (b *Backend) Ping(ctx context.Context) error {
	for _, check := range b.checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases connections in reverse opening order.
func (b *Backend) Close() {
	for i := len(b.closer) - 1; i >= 0; i-- {
		_ = b.closer[i]()
	}
}

// OpenSource opens the backend named by engine.source and, when
// engine.cache_enabled is set, puts the Redis cache in front of it.
func OpenSource(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.Engine.Source {
	case config.SourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		b.closer = append(b.closer, pg.Close)
		b.checks = append(b.checks, pg.Ping)

		if cfg.Database.Postgres.AutoMigrate {
			if err := database.RunMigrations(cfg.Database.Postgres.GetURL(), cfg.Database.Postgres.MigrationsPath); err != nil {
				b.Close()
				return nil, err
			}
			log.Info("migrations applied", map[string]interface{}{"path": cfg.Database.Postgres.MigrationsPath})
		}
		b.Source = queryriskrecords.NewPostgresSource(pg.GetDB())
		b.Surveillance = surveillance.NewPostgresStore(pg.GetDB())

	case config.SourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		b.checks = append(b.checks, func(context.Context) error { return es.Ping() })
		src, err := queryriskrecords.NewElasticsearchSource(es.Client, es.Index)
		if err != nil {
			return nil, err
		}
		b.Source = src
		b.Surveillance, err = surveillance.NewElasticsearchStore(es.Client, cfg.Database.Elasticsearch.SurveillanceIndex)
		if err != nil {
			return nil, err
		}

	case config.SourceSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.closer = append(b.closer, db.Close)
		b.checks = append(b.checks, db.PingContext)
		b.Source = queryriskrecords.NewSQLiteSource(db)
		b.Surveillance = surveillance.NewSQLiteStore(db)

	default:
		return nil, fmt.Errorf("unknown record source %q", cfg.Engine.Source)
	}

	if cfg.Engine.CacheEnabled {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closer = append(b.closer, rdb.Close)
		ttl := time.Duration(cfg.Engine.CacheTTL) * time.Second
		b.Source = queryriskrecords.NewCachedSource(b.Source, rdb.Client, ttl, log)
		log.Info("record cache enabled", map[string]interface{}{"ttl": ttl.String()})
	}

	log.Info("record source opened", map[string]interface{}{"source": b.Source.Name()})
	return b, nil
}

// SurveillanceFromConfig serves the backend's surveillance store with the
// engine fetch timeout.
func SurveillanceFromConfig(cfg *config.Config, b *Backend, log logger.Logger) *surveillance.Service {
	return surveillance.NewService(b.Surveillance, config.GetDuration(cfg.Engine.FetchTimeout), log)
}

// FromConfig builds an engine over source using the engine section of cfg.
// obs may be nil.
func FromConfig(cfg *config.Config, source queryriskrecords.RecordSource, obs *observability.Observability, log logger.Logger) *Engine {
	return New(Options{
		Source:        source,
		Vocabulary:    models.NewVocabulary(cfg.Engine.Vocabulary),
		MaxCompare:    cfg.Engine.MaxCompareCountries,
		FetchTimeout:  config.GetDuration(cfg.Engine.FetchTimeout),
		Logger:        log,
		Observability: obs,
	})
}
