package queryriskrecords

import (
	"context"
	"database/sql"
	"fmt"

	"lepto-risk-workers/internal/models"
	"lepto-risk-workers/internal/workers/data-access/query-risk-records/queries"
)

// SQLSource reads the riskanalysis table through database/sql. The same code
// serves Postgres (lib/pq) and the SQLite snapshot (modernc.org/sqlite).
type SQLSource struct {
	db      *sql.DB
	dialect queries.Dialect
}

func NewPostgresSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db, dialect: queries.Postgres}
}

func NewSQLiteSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db, dialect: queries.SQLite}
}

func (s *SQLSource) Name() string { return s.dialect.Name }

func (s *SQLSource) FetchAll(ctx context.Context) ([]models.RiskRecord, error) {
	res, err := queries.Execute(ctx, s.db, s.dialect, models.QueryTypeAllRecords, nil)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (s *SQLSource) FetchByCountry(ctx context.Context, country string, year *int) ([]models.RiskRecord, error) {
	params := map[string]interface{}{"country": country}
	if year != nil {
		params["year"] = *year
	}
	res, err := queries.Execute(ctx, s.db, s.dialect, models.QueryTypeRecordsByCountry, params)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (s *SQLSource) Countries(ctx context.Context) ([]string, error) {
	res, err := queries.Execute(ctx, s.db, s.dialect, models.QueryTypeDistinctCountries, nil)
	if err != nil {
		return nil, err
	}
	return res.Countries, nil
}

const insertRecordSQL = `INSERT INTO riskanalysis (year, country, predicted_rate, risk_percentage, risk_level, primary_factor, recommendations, risk_factor_analysis) VALUES (%s)`

// Insert writes records in one transaction. Used to seed snapshots.
func (s *SQLSource) Insert(ctx context.Context, records []models.RiskRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStatement(s.dialect))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Year, r.Country, nullFloat(r.PredictedRate), nullFloat(r.RiskPercentage),
			r.RiskLevel, r.PrimaryFactor, r.Recommendations, r.RiskFactorAnalysis,
		); err != nil {
			return i, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

func insertStatement(dialect queries.Dialect) string {
	placeholders := ""
	for i := 1; i <= 8; i++ {
		if i > 1 {
			placeholders += ", "
		}
		placeholders += dialect.Placeholder(i)
	}
	return fmt.Sprintf(insertRecordSQL, placeholders)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
