// internal/workers/data-access/query-risk-records/config.go
package queryriskrecords

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
