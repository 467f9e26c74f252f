// internal/common/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const createRiskAnalysisSQLite = `
CREATE TABLE IF NOT EXISTS riskanalysis (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	year                 INTEGER NOT NULL,
	country              TEXT    NOT NULL,
	predicted_rate       REAL,
	risk_percentage      REAL,
	risk_level           TEXT,
	primary_factor       TEXT,
	recommendations      TEXT,
	risk_factor_analysis TEXT
)`

const createRiskAnalysisIndexSQLite = `
CREATE INDEX IF NOT EXISTS idx_riskanalysis_country_year ON riskanalysis (country, year)`

const createSurveillanceSQLite = `
CREATE TABLE IF NOT EXISTS leptospirosis_data (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	year                INTEGER NOT NULL,
	country_code        TEXT    NOT NULL,
	country_name        TEXT,
	t2m                 REAL,
	d2m                 REAL,
	tp                  REAL,
	leptospirosis_rate  REAL,
	temperature_celsius REAL,
	dew_point_celsius   REAL,
	relative_humidity   REAL
)`

// OpenSQLite opens a snapshot database and makes sure the riskanalysis and
// leptospirosis_data tables exist.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range []string{createRiskAnalysisSQLite, createRiskAnalysisIndexSQLite, createSurveillanceSQLite} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
	}
	return db, nil
}
