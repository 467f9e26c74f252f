// internal/models/result.go
package models

// QueryResult is everything the presentation layer needs for one interaction.
type QueryResult struct {
	Message    string            `json:"message,omitempty"`
	Entities   ExtractedEntities `json:"entities"`
	Mode       QueryMode         `json:"mode"`
	Records    []RiskRecord      `json:"records"`
	Series     Series            `json:"series"`
	Statistics Statistics        `json:"statistics"`
	Chart      ChartData         `json:"chart"`
	Report     string            `json:"report"`
}

// Primary returns the first country of the query, or "".
func (r *QueryResult) Primary() string {
	if r == nil || len(r.Entities.Countries) == 0 {
		return ""
	}
	return r.Entities.Countries[0]
}

// Prediction is the placeholder outbreak prediction.
type Prediction struct {
	Outbreak bool   `json:"outbreak"`
	Details  string `json:"details"`
}
