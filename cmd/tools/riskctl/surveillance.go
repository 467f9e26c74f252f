package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lepto-risk-workers/internal/common/config"
	"lepto-risk-workers/internal/common/database"
	"lepto-risk-workers/internal/common/validation"
	"lepto-risk-workers/internal/engine"
	"lepto-risk-workers/internal/models"
	"lepto-risk-workers/internal/surveillance"
)

func newSurveillanceCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveillance",
		Short: "Load and browse the observed leptospirosis dataset",
	}

	var skipInvalid bool
	seedCmd := &cobra.Command{
		Use:   "seed <records.json>",
		Short: "Load surveillance rows from a JSON array into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			records, err := readSurveillance(args[0], cfg.Engine.MaxCompareCountries, skipInvalid)
			if err != nil {
				return err
			}
			n, err := insertSurveillance(ctx, cfg, records)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d surveillance row(s) into %s\n", n, cfg.Engine.Source)
			return nil
		},
	}
	seedCmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "drop rows that fail validation instead of aborting")

	var (
		search string
		sortBy string
		desc   bool
	)
	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Print the dataset, optionally filtered by country name and sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			svc, closeFn, err := opts.openSurveillance(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			rows, err := svc.Table(ctx, surveillance.TableQuery{Search: search, SortKey: sortBy, Descending: desc})
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(rows)
			}
			for _, r := range rows {
				fmt.Printf("%d\t%s\t%s\t%s\n", r.Year, r.CountryCode, r.CountryName, formatRate(r.LeptospirosisRate))
			}
			return nil
		},
	}
	tableCmd.Flags().StringVar(&search, "search", "", "keep rows whose country name contains this text")
	tableCmd.Flags().StringVar(&sortBy, "sort", "", "sort column ("+strings.Join(surveillance.SortKeys, ", ")+")")
	tableCmd.Flags().BoolVar(&desc, "desc", false, "sort descending")

	var year int
	mapCmd := &cobra.Command{
		Use:   "map",
		Short: "Print the map markers for one year (default: earliest)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			svc, closeFn, err := opts.openSurveillance(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var y *int
			if cmd.Flags().Changed("year") {
				y = models.Int(year)
			}
			m, err := svc.Map(ctx, y)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(m)
			}
			fmt.Printf("Year %d\n", m.Year)
			for _, mk := range m.Markers {
				fmt.Printf("%s\t%s\t%s\t%s\n", mk.CountryCode, mk.CountryName, formatRate(mk.LeptospirosisRate), mk.Color)
			}
			return nil
		},
	}
	mapCmd.Flags().IntVar(&year, "year", 0, "year to plot")

	seriesCmd := &cobra.Command{
		Use:   "series <country-code>",
		Short: "Print the yearly rates of one country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			svc, closeFn, err := opts.openSurveillance(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			series, err := svc.Series(ctx, args[0])
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(series)
			}
			fmt.Printf("%s (%s)\n", series.Country.Name, series.Country.Code)
			for _, p := range series.Points {
				fmt.Printf("%d\t%s\n", p.Year, formatRate(p.LeptospirosisRate))
			}
			return nil
		},
	}

	cmd.AddCommand(seedCmd, tableCmd, mapCmd, seriesCmd)
	return cmd
}

// openSurveillance opens the configured backend and serves its surveillance
// store. Call the returned close func when done.
func (o *rootOptions) openSurveillance(ctx context.Context) (*surveillance.Service, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := o.logger()
	backend, err := engine.OpenSource(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return engine.SurveillanceFromConfig(cfg, backend, log), backend.Close, nil
}

func readSurveillance(path string, maxCompare int, skipInvalid bool) ([]models.SurveillanceRecord, error) {
	records := []models.SurveillanceRecord{}
	err := readArray(path, validation.SchemaSurveillanceRecord, maxCompare, skipInvalid, func(elem json.RawMessage) error {
		var r models.SurveillanceRecord
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

func insertSurveillance(ctx context.Context, cfg *config.Config, records []models.SurveillanceRecord) (int, error) {
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
		return surveillance.NewPostgresStore(pg.GetDB()).Insert(ctx, records)

	case config.SourceSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLite.Path)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		return surveillance.NewSQLiteStore(db).Insert(ctx, records)

	case config.SourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return 0, err
		}
		store, err := surveillance.NewElasticsearchStore(es.Client, cfg.Database.Elasticsearch.SurveillanceIndex)
		if err != nil {
			return 0, err
		}
		return store.Bulk(ctx, records)
	}
	return 0, fmt.Errorf("unknown record source %q", cfg.Engine.Source)
}

func formatRate(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", *v)
}
