// internal/workers/infrastructure/build-report/models.go
package buildreport

import "lepto-risk-workers/internal/models"

type Input struct {
	Mode       models.QueryMode    `json:"mode"`
	Countries  []string            `json:"countries"`
	Year       *int                `json:"year,omitempty"`
	Records    []models.RiskRecord `json:"records"`
	Series     models.Series       `json:"series"`
	Statistics models.Statistics   `json:"statistics"`
}

type Output struct {
	Report  string `json:"report"`
	Summary string `json:"summary,omitempty"`
}
