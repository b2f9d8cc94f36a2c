package ports

// Package ports defines interfaces (hexagonal ports) for auth-related
// behavior. Implementations live in internal/adapters and internal/backend;
// orchestration in internal/session.

import (
	"context"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
)

// CredentialStore is the durable key-value store for one gateway session.
// It persists the access token, refresh token, and serialized identity under
// three distinct keys so a reload can reconstruct the session without
// re-authenticating. Missing values are reported as zero values, not errors.
type CredentialStore interface {
	SaveTokens(ctx context.Context, access, refresh string) error
	SaveIdentity(ctx context.Context, identity domainauth.Identity) error

	// AccessToken returns the stored access token, or "" when absent.
	AccessToken(ctx context.Context) (string, error)
	// RefreshToken returns the stored refresh token, or "" when absent.
	RefreshToken(ctx context.Context) (string, error)
	// Identity returns the stored identity, or nil when absent.
	Identity(ctx context.Context) (*domainauth.Identity, error)

	// Clear removes all three keys. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}

// AuthBackend is the auth surface of the school REST backend.
// Me takes the access token explicitly so the port stays independent of the
// session manager that owns token persistence.
type AuthBackend interface {
	Login(ctx context.Context, email, senha string) (domainauth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error)
	Me(ctx context.Context, accessToken string) (domainauth.Identity, error)
}
