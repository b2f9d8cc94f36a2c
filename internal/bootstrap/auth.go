package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/escolanet/escola-ui-api/config"
	"github.com/escolanet/escola-ui-api/internal/adapters/devbackend"
	"github.com/escolanet/escola-ui-api/internal/backend"
	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	"github.com/escolanet/escola-ui-api/internal/ports"
)

// BuildAuthBackend creates the login/refresh backend for the configured
// auth mode: the school API in real mode, the in-process dev backend in
// mock mode. Login, refresh, and the explicit-bearer identity fetch need
// no transport-level credential, so real mode uses a plain client.
//
//nolint:ireturn // the caller wires the port, not a concrete backend.
func BuildAuthBackend(cfg config.AppConfig, logger *slog.Logger) (ports.AuthBackend, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		logger.Warn("mock auth mode enabled, logins are served in-process",
			slog.String("email", cfg.Auth.Dev.Email))
		return devbackend.NewBackend(devbackend.Config{
			Users: []devbackend.User{{
				ID:     1,
				Email:  cfg.Auth.Dev.Email,
				Senha:  cfg.Auth.Dev.Senha,
				Name:   cfg.Auth.Dev.Nome,
				Perfil: domainauth.Role(cfg.Auth.Dev.Perfil),
			}},
			SigningKey: []byte(cfg.Auth.Dev.SigningKey),
			AccessTTL:  cfg.Auth.Dev.AccessTTL,
			RefreshTTL: cfg.Auth.Dev.RefreshTTL,
		})

	case config.AuthModeReal:
		return backend.NewClient(backend.ClientOptions{
			BaseURL:    cfg.Backend.BaseURL,
			HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
			Logger:     logger,
		})

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
