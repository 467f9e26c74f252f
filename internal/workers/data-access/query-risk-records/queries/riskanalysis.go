// internal/workers/data-access/query-risk-records/queries/riskanalysis.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lepto-risk-workers/internal/models"
)

const selectRecords = `SELECT year, country, predicted_rate, risk_percentage, risk_level, primary_factor, recommendations, risk_factor_analysis FROM riskanalysis`

const (
	AllRecordsSQL        = selectRecords + ` ORDER BY year, country`
	DistinctCountriesSQL = `SELECT DISTINCT country FROM riskanalysis ORDER BY country`
)

// RecordsByCountrySQL renders the per-country query for dialect, with an
// optional exact year filter.
func RecordsByCountrySQL(dialect Dialect, withYear bool) string {
	q := selectRecords + ` WHERE LOWER(country) = LOWER(` + dialect.Placeholder(1) + `)`
	if withYear {
		q += ` AND year = ` + dialect.Placeholder(2)
	}
	return q + ` ORDER BY year`
}

func AllRecords(ctx context.Context, db *sql.DB, _ Dialect, _ map[string]interface{}) (*Result, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, AllRecordsSQL)
	if err != nil {
		return nil, err
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	return &Result{
		Records:       records,
		RowCount:      len(records),
		ExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}

func DistinctCountries(ctx context.Context, db *sql.DB, _ Dialect, _ map[string]interface{}) (*Result, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, DistinctCountriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	countries := []string{}
	for rows.Next() {
		var country string
		if err := rows.Scan(&country); err != nil {
			return nil, err
		}
		countries = append(countries, country)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Countries:     countries,
		RowCount:      len(countries),
		ExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}

// RecordsByCountry expects params["country"] (string) and optionally
// params["year"] (int).
func RecordsByCountry(ctx context.Context, db *sql.DB, dialect Dialect, params map[string]interface{}) (*Result, error) {
	country, ok := params["country"].(string)
	if !ok || strings.TrimSpace(country) == "" {
		return nil, fmt.Errorf("%w: country", ErrMissingParam)
	}

	start := time.Now()

	args := []interface{}{strings.TrimSpace(country)}
	year, withYear := params["year"].(int)
	if withYear {
		args = append(args, year)
	}

	rows, err := db.QueryContext(ctx, RecordsByCountrySQL(dialect, withYear), args...)
	if err != nil {
		return nil, err
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	return &Result{
		Records:       records,
		RowCount:      len(records),
		ExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}

func scanRecords(rows *sql.Rows) ([]models.RiskRecord, error) {
	defer rows.Close()

	records := []models.RiskRecord{}
	for rows.Next() {
		var (
			r                                       models.RiskRecord
			predicted, risk                         sql.NullFloat64
			level, factor, recommendations, factors sql.NullString
		)
		if err := rows.Scan(&r.Year, &r.Country, &predicted, &risk, &level, &factor, &recommendations, &factors); err != nil {
			return nil, err
		}
		if predicted.Valid {
			r.PredictedRate = models.Float(predicted.Float64)
		}
		if risk.Valid {
			r.RiskPercentage = models.Float(risk.Float64)
		}
		r.RiskLevel = level.String
		r.PrimaryFactor = factor.String
		r.Recommendations = recommendations.String
		r.RiskFactorAnalysis = factors.String
		records = append(records, r)
	}
	return records, rows.Err()
}
