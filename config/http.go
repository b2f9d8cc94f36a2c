package config

import "time"

// HTTPConfig contains HTTP server and session cookie configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieName is the gateway session cookie name.
	CookieName string `env:"APP_COOKIE_NAME" envDefault:"escola_session"`

	// CookieDomain is the domain for the session cookie.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecure marks the session cookie Secure. Enable behind TLS.
	CookieSecure bool `env:"APP_COOKIE_SECURE" envDefault:"false"`

	// CookieMaxAge bounds the session cookie lifetime.
	CookieMaxAge time.Duration `env:"APP_COOKIE_MAX_AGE" envDefault:"168h"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.CookieName == "" {
		h.CookieName = "escola_session"
	}
	if h.CookieMaxAge <= 0 {
		h.CookieMaxAge = 168 * time.Hour
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}
