package backend

import (
	"context"
	"net/http"
	"strings"
)

// TokenSource yields the current bearer token, or "" when no session is
// live. The session manager satisfies this; its expiry check runs at every
// read.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// DefaultExemptPaths are backend endpoints that never receive credentials.
func DefaultExemptPaths() []string {
	return []string{
		"/auth/login",
		"/auth/signup",
		"/auth/refresh",
		"/auth/forgot-password",
		"/auth/reset-password",
	}
}

// Authenticator is an http.RoundTripper that attaches the current bearer
// token to every outgoing backend call except an allow-list of
// unauthenticated endpoints, and reacts to authorization failures in the
// response. The response always reaches the caller; the hooks only add the
// side effect.
type Authenticator struct {
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper
	// Tokens supplies the credential. When it yields "", the call is sent
	// unauthenticated and the backend decides.
	Tokens TokenSource
	// Exempt paths are matched by substring, mirroring the backend route
	// layout. DefaultExemptPaths() when nil.
	Exempt []string

	// OnUnauthorized is invoked exactly once per 401 on a non-exempt call
	// (the forced logout). Optional.
	OnUnauthorized func(ctx context.Context)
	// OnForbidden is invoked on 403 (the access-denied redirect signal).
	// Optional.
	OnForbidden func(ctx context.Context)
}

func (a *Authenticator) base() http.RoundTripper {
	if a.Base != nil {
		return a.Base
	}
	return http.DefaultTransport
}

func (a *Authenticator) exempt(path string) bool {
	paths := a.Exempt
	if paths == nil {
		paths = DefaultExemptPaths()
	}
	for _, p := range paths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// RoundTrip implements http.RoundTripper.
func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	if a.exempt(req.URL.Path) {
		return a.base().RoundTrip(req)
	}

	ctx := req.Context()
	if a.Tokens != nil && req.Header.Get("Authorization") == "" {
		tok, err := a.Tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if tok != "" {
			// Clone before mutating: RoundTrippers must not modify the
			// caller's request.
			req = req.Clone(ctx)
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := a.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if a.OnUnauthorized != nil {
			a.OnUnauthorized(ctx)
		}
	case http.StatusForbidden:
		if a.OnForbidden != nil {
			a.OnForbidden(ctx)
		}
	}
	return resp, nil
}
