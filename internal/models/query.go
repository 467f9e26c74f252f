// internal/models/query.go
package models

// QueryMode is decided solely by the number of countries and the presence of a year.
type QueryMode string

const (
	QueryModeSingle              QueryMode = "single"
	QueryModeSingleYear          QueryMode = "single_year"
	QueryModeMultiComparison     QueryMode = "multi_comparison"
	QueryModeMultiComparisonYear QueryMode = "multi_comparison_year"
)

// IsMulti reports whether the mode compares two or more countries.
func (m QueryMode) IsMulti() bool {
	return m == QueryModeMultiComparison || m == QueryModeMultiComparisonYear
}

// HasYear reports whether the mode is year filtered.
func (m QueryMode) HasYear() bool {
	return m == QueryModeSingleYear || m == QueryModeMultiComparisonYear
}

// Valid reports whether m is one of the four known modes.
func (m QueryMode) Valid() bool {
	switch m {
	case QueryModeSingle, QueryModeSingleYear, QueryModeMultiComparison, QueryModeMultiComparisonYear:
		return true
	}
	return false
}

// ExtractedEntities is what the extractor found in one message.
// Countries keep vocabulary order, not message order.
type ExtractedEntities struct {
	Countries []string `json:"countries"`
	Year      *int     `json:"year,omitempty"`
}

// Empty reports whether no country was recognised.
func (e ExtractedEntities) Empty() bool {
	return len(e.Countries) == 0
}

// QueryType names a record store query.
type QueryType string

const (
	QueryTypeAllRecords        QueryType = "all_records"
	QueryTypeDistinctCountries QueryType = "distinct_countries"
	QueryTypeRecordsByCountry  QueryType = "records_by_country"
)

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
