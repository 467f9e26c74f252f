// internal/workers/risk-query/build-series/config.go
package buildseries

import "time"

type Config struct {
	Timeout time.Duration
	Palette []string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Palette: DefaultPalette,
	}
}
