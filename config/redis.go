package config

import "time"

// RedisConfig contains the credential store connection configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// KeyPrefix namespaces the per-session credential keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"escola:session:"`

	// CredentialTTL bounds how long stored tokens and identity live.
	CredentialTTL time.Duration `env:"CREDENTIAL_TTL" envDefault:"168h"`
}
