// internal/workers/analytics/analyze-order-history/config.go
package analyzeorderhistory

import "time"

type Config struct {
	DefaultTimeRange string
	DefaultPeriod    string
	Timeout          time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultTimeRange: "month",
		DefaultPeriod:    "day",
		Timeout:          30 * time.Second,
	}
}
