// internal/workers/data-access/query-risk-records/models.go
package queryriskrecords

import "lepto-risk-workers/internal/models"

type Input struct {
	QueryType string   `json:"queryType,omitempty"` // defaults to all_records
	Countries []string `json:"countries,omitempty"`
	Year      *int     `json:"year,omitempty"`
}

type Output struct {
	Records            []models.RiskRecord `json:"records"`
	Countries          []string            `json:"availableCountries,omitempty"`
	RowCount           int                 `json:"rowCount"`
	Source             string              `json:"source"`
	QueryExecutionTime int64               `json:"queryExecutionTime"` // milliseconds
}
