// internal/workers/data-access/query-risk-records/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"lepto-risk-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// Dialect captures the placeholder syntax of a SQL driver.
type Dialect struct {
	Name        string
	placeholder func(n int) string
}

// Placeholder returns the n-th (1 based) bind placeholder.
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

var (
	Postgres = Dialect{Name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	SQLite   = Dialect{Name: "sqlite", placeholder: func(int) string { return "?" }}
)

// Result is what every query returns.
type Result struct {
	Records       []models.RiskRecord
	Countries     []string
	RowCount      int
	ExecutionTime int64 // milliseconds
}

type QueryFunc func(ctx context.Context, db *sql.DB, dialect Dialect, params map[string]interface{}) (*Result, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeAllRecords:        AllRecords,
	models.QueryTypeDistinctCountries: DistinctCountries,
	models.QueryTypeRecordsByCountry:  RecordsByCountry,
}

func Execute(ctx context.Context, db *sql.DB, dialect Dialect, queryType models.QueryType, params map[string]interface{}) (*Result, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, dialect, params)
}
