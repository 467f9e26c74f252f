// internal/workers/risk-query/compute-statistics/config.go
package computestatistics

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}
