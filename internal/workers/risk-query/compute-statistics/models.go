// internal/workers/risk-query/compute-statistics/models.go
package computestatistics

import "lepto-risk-workers/internal/models"

type Input struct {
	Series    models.Series       `json:"series"`
	Countries []string            `json:"countries"`
	Records   []models.RiskRecord `json:"records,omitempty"`
}

type Output struct {
	Statistics models.Statistics `json:"statistics"`
	Domain     [2]float64        `json:"domain"`
	RiskLevel  string            `json:"riskLevel,omitempty"`
}
