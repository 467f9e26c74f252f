// Package surveillance serves the observed leptospirosis dataset behind the
// dashboard: a searchable table, a per-year map and per-country series.
package surveillance

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"lepto-risk-workers/internal/models"
	"lepto-risk-workers/internal/workers/data-access/query-risk-records/queries"
)

// Store reads every surveillance record ordered by year, then country code.
type Store interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.SurveillanceRecord, error)
}

const surveillanceColumns = `year, country_code, country_name, t2m, d2m, tp, leptospirosis_rate, temperature_celsius, dew_point_celsius, relative_humidity`

const (
	AllRecordsSQL   = `SELECT id, ` + surveillanceColumns + ` FROM leptospirosis_data ORDER BY year, country_code`
	insertRecordSQL = `INSERT INTO leptospirosis_data (` + surveillanceColumns + `) VALUES (%s)`
)

// SQLStore reads leptospirosis_data from Postgres or a SQLite snapshot.
type SQLStore struct {
	db      *sql.DB
	dialect queries.Dialect
}

func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: queries.Postgres}
}

func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: queries.SQLite}
}

func (s *SQLStore) Name() string { return s.dialect.Name }

func (s *SQLStore) FetchAll(ctx context.Context) ([]models.SurveillanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, AllRecordsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.SurveillanceRecord{}
	for rows.Next() {
		var (
			r    models.SurveillanceRecord
			name sql.NullString
			nums [7]sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Year, &r.CountryCode, &name,
			&nums[0], &nums[1], &nums[2], &nums[3], &nums[4], &nums[5], &nums[6]); err != nil {
			return nil, err
		}
		r.CountryName = name.String
		for i, dst := range numericFields(&r) {
			if nums[i].Valid {
				*dst = models.Float(nums[i].Float64)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Insert writes records in one transaction. IDs are assigned by the store.
func (s *SQLStore) Insert(ctx context.Context, records []models.SurveillanceRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeholders := make([]string, 10)
	for i := range placeholders {
		placeholders[i] = s.dialect.Placeholder(i + 1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(insertRecordSQL, strings.Join(placeholders, ", ")))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		args := []interface{}{r.Year, r.CountryCode, r.CountryName}
		for _, v := range numericFields(r) {
			args = append(args, nullFloat(*v))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return i, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// numericFields lists the covariate columns in table order.
func numericFields(r *models.SurveillanceRecord) []**float64 {
	return []**float64{
		&r.T2M, &r.D2M, &r.TP, &r.LeptospirosisRate,
		&r.TemperatureCelsius, &r.DewPointCelsius, &r.RelativeHumidity,
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// MemoryStore serves a fixed record set. Used by tests and offline tools.
type MemoryStore struct {
	records []models.SurveillanceRecord
}

func NewMemoryStore(records []models.SurveillanceRecord) *MemoryStore {
	out := append([]models.SurveillanceRecord(nil), records...)
	SortRecords(out)
	return &MemoryStore{records: out}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) FetchAll(context.Context) ([]models.SurveillanceRecord, error) {
	return append([]models.SurveillanceRecord{}, s.records...), nil
}

// SortRecords orders records by year, then country code.
func SortRecords(records []models.SurveillanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].CountryCode < records[j].CountryCode
	})
}
