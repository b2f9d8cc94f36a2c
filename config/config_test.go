package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeReal, cfg.Auth.Mode)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "escola:session:", cfg.Redis.KeyPrefix)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "escola_session", cfg.HTTP.CookieName)
	assert.Equal(t, 168*time.Hour, cfg.HTTP.CookieMaxAge)
}

func TestAppConfig_FromEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("DEV_AUTH_EMAIL", "admin@escola.com")
	t.Setenv("DEV_AUTH_PERFIL", "ADMIN")
	t.Setenv("BACKEND_BASE_URL", "https://api.escola.com/api/v1/")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("HTTP_ADDR", ":9090")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, "admin@escola.com", cfg.Auth.Dev.Email)
	assert.Equal(t, "https://api.escola.com/api/v1", cfg.Backend.BaseURL, "trailing slash trimmed")
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	require.NoError(t, m.UnmarshalText([]byte("REAL")))
	assert.Equal(t, AuthModeReal, m)

	require.NoError(t, m.UnmarshalText([]byte("mock")))
	assert.Equal(t, AuthModeMock, m)

	assert.Error(t, m.UnmarshalText([]byte("oauth")))
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}
