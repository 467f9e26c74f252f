package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lepto-risk-workers/internal/common/config"
	"lepto-risk-workers/internal/common/database"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/validation"
	"lepto-risk-workers/internal/models"
	qrr "lepto-risk-workers/internal/workers/data-access/query-risk-records"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var skipInvalid bool

	cmd := &cobra.Command{
		Use:   "seed <records.json>",
		Short: "Load risk records from a JSON array into the configured store",
		Long: `Every element is validated against the risk record schema before
anything is written. With --skip-invalid, failing elements are reported and
left out; otherwise the first failure aborts the load.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			records, err := readRecords(args[0], cfg.Engine.MaxCompareCountries, skipInvalid)
			if err != nil {
				return err
			}

			log := opts.logger()
			n, err := insertRecords(ctx, cfg, records, log)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d record(s) into %s\n", n, cfg.Engine.Source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "drop records that fail validation instead of aborting")
	return cmd
}

func readRecords(path string, maxCompare int, skipInvalid bool) ([]models.RiskRecord, error) {
	records := []models.RiskRecord{}
	err := readArray(path, validation.SchemaRiskRecord, maxCompare, skipInvalid, func(elem json.RawMessage) error {
		var r models.RiskRecord
		if err := json.Unmarshal(elem, &r); err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// readArray validates each element of the JSON array in path against schema
// and passes the valid ones to decode in order.
func readArray(path, schema string, maxCompare int, skipInvalid bool, decode func(elem json.RawMessage) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s is not a JSON array: %w", path, err)
	}

	validator, err := validation.NewValidator(maxCompare)
	if err != nil {
		return err
	}

	for i, elem := range raw {
		result, err := validator.ValidateJSON(schema, elem)
		if err != nil {
			return err
		}
		if !result.Valid {
			if skipInvalid {
				fmt.Fprintf(os.Stderr, "skipping record %d: %s\n", i, result.Error())
				continue
			}
			return fmt.Errorf("record %d: %s", i, result.Error())
		}
		if err := decode(elem); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func insertRecords(ctx context.Context, cfg *config.Config, records []models.RiskRecord, log logger.Logger) (int, error) {
	var (
		n   int
		err error
	)

	switch cfg.Engine.Source {
	case config.SourcePostgres:
		if cfg.Database.Postgres.AutoMigrate {
			if err := database.RunMigrations(cfg.Database.Postgres.GetURL(), cfg.Database.Postgres.MigrationsPath); err != nil {
				return 0, err
			}
		}
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return 0, err
		}
		defer pg.Close()
		n, err = qrr.NewPostgresSource(pg.GetDB()).Insert(ctx, records)
		if err != nil {
			return n, err
		}

	case config.SourceSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLite.Path)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		n, err = qrr.NewSQLiteSource(db).Insert(ctx, records)
		if err != nil {
			return n, err
		}

	case config.SourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return 0, err
		}
		src, err := qrr.NewElasticsearchSource(es.Client, es.Index)
		if err != nil {
			return 0, err
		}
		n, err = src.Bulk(ctx, records)
		if err != nil {
			return n, err
		}

	default:
		return 0, fmt.Errorf("unknown record source %q", cfg.Engine.Source)
	}

	if cfg.Engine.CacheEnabled {
		err = invalidateCache(ctx, cfg, log)
	}
	return n, err
}

// invalidateCache drops cached record sets so readers see the new rows.
func invalidateCache(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	ttl := time.Duration(cfg.Engine.CacheTTL) * time.Second
	return qrr.NewCachedSource(qrr.NewMemorySource(nil), rdb.Client, ttl, log).Invalidate(ctx)
}
