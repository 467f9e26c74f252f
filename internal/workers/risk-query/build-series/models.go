// internal/workers/risk-query/build-series/models.go
package buildseries

import "lepto-risk-workers/internal/models"

type Input struct {
	Records   []models.RiskRecord `json:"records"`
	Mode      models.QueryMode    `json:"mode"`
	Countries []string            `json:"countries"`
}

type Output struct {
	Series   models.Series    `json:"series"`
	Labels   []int            `json:"labels"`
	Datasets []models.Dataset `json:"datasets"`
}
