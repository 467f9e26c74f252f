// internal/workers/risk-query/classify-query/config.go
package classifyquery

import (
	"time"

	"lepto-risk-workers/internal/models"
)

type Config struct {
	Timeout             time.Duration
	Vocabulary          models.Vocabulary
	MaxCompareCountries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             5 * time.Second,
		Vocabulary:          models.DefaultVocabulary,
		MaxCompareCountries: 3,
	}
}
