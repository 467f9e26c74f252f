// internal/workers/risk-query/classify-query/models.go
package classifyquery

import "lepto-risk-workers/internal/models"

// Input carries either extracted entities or an explicit selection.
// Explicit selections are canonicalised and capped; extracted ones are not.
type Input struct {
	Countries []string `json:"countries"`
	Year      *int     `json:"year,omitempty"`
	Explicit  bool     `json:"explicit,omitempty"`
}

type Output struct {
	Mode      models.QueryMode `json:"mode"`
	Countries []string         `json:"countries"`
	Year      *int             `json:"year,omitempty"`
	Primary   string           `json:"primary"`
}
