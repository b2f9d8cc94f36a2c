package session

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
	"github.com/escolanet/escola-ui-api/internal/ports"
	"github.com/escolanet/escola-ui-api/internal/token"
)

// ManagerOptions groups dependencies for Manager.
type ManagerOptions struct {
	Backend     ports.AuthBackend
	Credentials ports.CredentialStore
	Logger      *slog.Logger
}

// Manager orchestrates login, logout, token refresh, and expiry checks for
// one gateway session. It is the sole mutator of the credential store and
// the in-memory identity store; guards and the outbound authenticator only
// read through it.
type Manager struct {
	backend ports.AuthBackend
	creds   ports.CredentialStore
	store   *Store
	logger  *slog.Logger

	// refreshGroup coalesces concurrent refresh attempts so a burst of 401s
	// produces a single refresh-token grant.
	refreshGroup singleflight.Group
}

// NewManager constructs a new Manager.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Backend == nil {
		return nil, errors.New("AuthBackend is required")
	}
	if opts.Credentials == nil {
		return nil, errors.New("CredentialStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend: opts.Backend,
		creds:   opts.Credentials,
		store:   NewStore(),
		logger:  logger,
	}, nil
}

// Store exposes the identity store for observation.
func (m *Manager) Store() *Store { return m.store }

// Current returns the identity of the live session, or nil.
func (m *Manager) Current() *domainauth.Identity { return m.store.Current() }

// Login authenticates against the backend and establishes the session.
// A backend rejection leaves all state untouched and is returned to the
// caller; a post-issuance decode failure resolves to a fully absent session.
func (m *Manager) Login(ctx context.Context, email, senha string) error {
	pair, err := m.backend.Login(ctx, email, senha)
	if err != nil {
		return err
	}
	return m.establish(ctx, pair)
}

// establish persists the token pair, resolves the identity, and publishes
// it. Any failure after issuance clears everything so partial states
// (token without identity) never survive the operation.
func (m *Manager) establish(ctx context.Context, pair domainauth.TokenPair) error {
	if err := m.creds.SaveTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist tokens")
	}

	identity, err := token.Decode(pair.AccessToken)
	if err != nil {
		// The issued token may carry a minimal claim set; fall back to the
		// profile endpoint before giving up.
		identity, err = m.backend.Me(ctx, pair.AccessToken)
		if err != nil {
			if clearErr := m.Logout(ctx); clearErr != nil {
				return errors.Join(err, clearErr)
			}
			return err
		}
	}

	if err := m.creds.SaveIdentity(ctx, identity); err != nil {
		saveErr := apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist identity")
		if clearErr := m.Logout(ctx); clearErr != nil {
			return errors.Join(saveErr, clearErr)
		}
		return saveErr
	}
	m.store.Set(identity)
	return nil
}

// Logout clears persisted tokens and identity and the in-memory store.
// It is idempotent; logging out twice is safe.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.creds.Clear(ctx)
	m.store.Clear()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear credentials")
	}
	return nil
}

// Refresh exchanges the stored refresh token for a new token pair.
// An unrefreshable session is treated as no session: any failure forces a
// logout before the error is returned. Concurrent calls are coalesced.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return nil, m.refresh(ctx)
	})
	return err
}

func (m *Manager) refresh(ctx context.Context) error {
	refreshToken, err := m.creds.RefreshToken(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "read refresh token")
	}
	if refreshToken == "" {
		if err := m.Logout(ctx); err != nil {
			return err
		}
		return apperrors.Unauthenticated("no refresh token")
	}

	pair, err := m.backend.Refresh(ctx, refreshToken)
	if err != nil {
		m.logger.WarnContext(ctx, "token refresh failed, clearing session", "error", err)
		if clearErr := m.Logout(ctx); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return err
	}
	return m.establish(ctx, pair)
}

// Token returns the stored access token for outbound calls. Expiry is
// enforced here, at the read boundary: an expired token triggers a logout
// and yields "", so a stale credential is never handed out.
func (m *Manager) Token(ctx context.Context) (string, error) {
	access, err := m.creds.AccessToken(ctx)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "read access token")
	}
	if access == "" {
		return "", nil
	}
	if token.IsExpired(access) {
		m.logger.InfoContext(ctx, "access token expired, clearing session")
		if err := m.Logout(ctx); err != nil {
			return "", err
		}
		return "", nil
	}
	return access, nil
}

// Restore rebuilds the in-memory session from the durable store, so a
// gateway restart or page reload does not force re-authentication. An
// absent or expired token resolves to a cleanly absent session.
func (m *Manager) Restore(ctx context.Context) error {
	access, err := m.Token(ctx)
	if err != nil {
		return err
	}
	if access == "" {
		m.store.Clear()
		return nil
	}

	identity, err := m.creds.Identity(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "read identity")
	}
	if identity != nil {
		m.store.Set(*identity)
		return nil
	}

	// No cached identity; ask the backend.
	resolved, err := m.backend.Me(ctx, access)
	if err != nil {
		if clearErr := m.Logout(ctx); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return err
	}
	if err := m.creds.SaveIdentity(ctx, resolved); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist identity")
	}
	m.store.Set(resolved)
	return nil
}

// HasRole reports whether the live session satisfies the given role.
// ADMIN satisfies every role check; the policy lives in auth.Authorized.
func (m *Manager) HasRole(role domainauth.Role) bool {
	return domainauth.Authorized(m.store.Current(), []domainauth.Role{role})
}

// HasAnyRole reports whether the live session satisfies any of the roles.
func (m *Manager) HasAnyRole(roles ...domainauth.Role) bool {
	return domainauth.Authorized(m.store.Current(), roles)
}
