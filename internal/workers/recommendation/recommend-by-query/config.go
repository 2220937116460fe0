// internal/workers/recommendation/recommend-by-query/config.go
package recommendbyquery

import "time"

type Config struct {
	MaxResults int
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxResults: 50,
		Timeout:    30 * time.Second,
	}
}
