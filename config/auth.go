package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeReal authenticates against the school API.
	AuthModeReal AuthMode = "real"
	// AuthModeMock uses the in-process dev backend (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "real", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: real, mock)", v)
	}
}

// DevAuthConfig controls the mock backend's static credential set.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Email      string `env:"EMAIL"       envDefault:"dev@escola.com"`
	Senha      string `env:"SENHA"       envDefault:"dev123"`
	Nome       string `env:"NOME"        envDefault:"Dev User"`
	Perfil     string `env:"PERFIL"      envDefault:"ADMIN"`
	SigningKey string `env:"SIGNING_KEY" envDefault:""`

	AccessTTL  time.Duration `env:"ACCESS_TTL"  envDefault:"30m"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines whether logins go to the school API or the dev backend.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"real"`

	// Dev backend configuration (used when Mode=mock).
	Dev DevAuthConfig `envPrefix:"DEV_AUTH_"`
}
