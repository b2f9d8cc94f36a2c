package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/escolanet/escola-ui-api/config"
	redisadapter "github.com/escolanet/escola-ui-api/internal/adapters/redis"
	"github.com/escolanet/escola-ui-api/internal/backend"
	httpx "github.com/escolanet/escola-ui-api/internal/http"
	"github.com/escolanet/escola-ui-api/internal/ports"
	"github.com/escolanet/escola-ui-api/internal/session"
)

// GatewayDeps are the assembled dependencies for the HTTP gateway.
type GatewayDeps struct {
	Config      config.AppConfig
	RedisClient redis.UniversalClient
	AuthBackend ports.AuthBackend
	Logger      *slog.Logger
}

// BuildGateway wires the per-session credential plumbing into a router:
// each gateway session gets its own Redis-backed credential store and
// session manager, and each manager gets a backend client whose transport
// authenticates outbound calls with that session's access token.
func BuildGateway(deps GatewayDeps) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := session.NewRegistry(func(sessionID string) (*session.Manager, error) {
		creds := redisadapter.NewCredentialStoreWithOptions(deps.RedisClient, sessionID,
			redisadapter.CredentialStoreOptions{
				Prefix: deps.Config.Redis.KeyPrefix,
				TTL:    deps.Config.Redis.CredentialTTL,
			})
		return session.NewManager(session.ManagerOptions{
			Backend:     deps.AuthBackend,
			Credentials: creds,
			Logger:      logger,
		})
	})
	if err != nil {
		return nil, err
	}

	clients := func(mgr *session.Manager) (*backend.Client, error) {
		authenticator := &backend.Authenticator{
			Tokens: mgr,
			Exempt: backend.DefaultExemptPaths(),
			// A backend 401 means the stored credential is dead; drop it so
			// the next navigation lands on the login page.
			OnUnauthorized: func(ctx context.Context) {
				if err := mgr.Logout(ctx); err != nil {
					logger.WarnContext(ctx, "logout after backend 401 failed",
						slog.String("error", err.Error()))
				}
			},
			// A backend 403 keeps the session; the handler's error path
			// turns it into the access-denied redirect for navigations.
			OnForbidden: func(ctx context.Context) {
				logger.InfoContext(ctx, "backend denied access")
			},
		}
		return backend.NewClient(backend.ClientOptions{
			BaseURL: deps.Config.Backend.BaseURL,
			HTTPClient: &http.Client{
				Transport: authenticator,
				Timeout:   deps.Config.Backend.Timeout,
			},
			Logger: logger,
		})
	}

	return httpx.NewRouter(httpx.RouterServices{
		Registry: registry,
		Clients:  clients,
		Cookie: httpx.CookieConfig{
			Name:   deps.Config.HTTP.CookieName,
			Domain: deps.Config.HTTP.CookieDomain,
			Secure: deps.Config.HTTP.CookieSecure,
			MaxAge: deps.Config.HTTP.CookieMaxAge,
		},
		Logger: logger,
	}), nil
}
