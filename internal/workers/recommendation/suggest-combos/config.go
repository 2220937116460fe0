// internal/workers/recommendation/suggest-combos/config.go
package suggestcombos

import "time"

type Config struct {
	DefaultSuggestions int
	Timeout            time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultSuggestions: 5,
		Timeout:            30 * time.Second,
	}
}
