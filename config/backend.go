package config

import (
	"strings"
	"time"
)

// BackendConfig contains the school API connection configuration.
type BackendConfig struct {
	// BaseURL is the backend root including the API prefix.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000/api/v1"`

	// Timeout bounds each outbound call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(b.BaseURL, "/")
	if b.Timeout <= 0 {
		b.Timeout = 15 * time.Second
	}
}
