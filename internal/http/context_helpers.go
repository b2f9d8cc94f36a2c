package httpx

import (
	"context"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	"github.com/escolanet/escola-ui-api/internal/session"
)

// managerKey and identityKey are unexported context key types so values
// cannot collide with other packages.
type managerKey struct{}

type identityKey struct{}

// SetManagerInContext returns a child context carrying the gateway
// session's Manager. A nil manager returns ctx unchanged.
func SetManagerInContext(ctx context.Context, mgr *session.Manager) context.Context {
	if mgr == nil {
		return ctx
	}
	return context.WithValue(ctx, managerKey{}, mgr)
}

// ManagerFromContext returns the session Manager and whether one is present.
func ManagerFromContext(ctx context.Context) (*session.Manager, bool) {
	mgr, ok := ctx.Value(managerKey{}).(*session.Manager)
	return mgr, ok && mgr != nil
}

// SetIdentityInContext returns a child context carrying the authenticated
// identity. A nil identity returns ctx unchanged.
func SetIdentityInContext(ctx context.Context, identity *domainauth.Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the authenticated identity, or nil when the
// request is anonymous.
func IdentityFromContext(ctx context.Context) *domainauth.Identity {
	if id, ok := ctx.Value(identityKey{}).(*domainauth.Identity); ok {
		return id
	}
	return nil
}
