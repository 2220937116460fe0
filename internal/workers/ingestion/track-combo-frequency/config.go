// internal/workers/ingestion/track-combo-frequency/config.go
package trackcombofrequency

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
