// internal/workers/recommendation/recommend-by-ingredients/config.go
package recommendbyingredients

import "time"

type Config struct {
	DefaultLimit int
	MaxLimit     int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultLimit: 10,
		MaxLimit:     100,
		Timeout:      30 * time.Second,
	}
}
