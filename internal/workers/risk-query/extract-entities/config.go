// internal/workers/risk-query/extract-entities/config.go
package extractentities

import (
	"time"

	"lepto-risk-workers/internal/models"
)

type Config struct {
	Timeout    time.Duration
	Vocabulary models.Vocabulary
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    5 * time.Second,
		Vocabulary: models.DefaultVocabulary,
	}
}
