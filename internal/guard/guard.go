package guard

// Package guard decides whether a navigation may proceed. It is pure: the
// decision is computed from the route's rule and the current identity, and
// denials are redirects, never errors. The HTTP layer executes the decision.

import (
	"net/url"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
)

// Canonical navigation targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Query parameter names used on redirects.
const (
	ReturnURLParam = "returnUrl"
	ErrorParam     = "error"

	// AccessDenied is the single denial indicator for role mismatches.
	AccessDenied = "access_denied"
)

// Rule is the declarative authorization requirement attached to a route.
// A zero Rule means "any authenticated identity". PublicOnly marks routes
// (the login page) that an authenticated user must not revisit. Public
// marks routes open to everyone, authenticated or not.
type Rule struct {
	Roles      []domainauth.Role
	PublicOnly bool
	Public     bool
}

// Action is the terminal outcome of a guard evaluation.
type Action string

const (
	ActionAllow         Action = "allow"
	ActionRedirectLogin Action = "redirect_login"
	ActionRedirectHome  Action = "redirect_home"
)

// Decision is what the routing layer executes: allow the navigation or
// redirect to Location.
type Decision struct {
	Action   Action
	Location string
}

// Allowed reports whether the navigation may proceed.
func (d Decision) Allowed() bool { return d.Action == ActionAllow }

// Evaluate runs the authorization state machine for one navigation attempt.
// requestedPath is the full requested path including its query string; it is
// remembered on the login redirect so the navigation can resume post-login.
func Evaluate(identity *domainauth.Identity, rule Rule, requestedPath string) Decision {
	if rule.Public {
		return Decision{Action: ActionAllow}
	}

	if rule.PublicOnly {
		if identity == nil {
			return Decision{Action: ActionAllow}
		}
		// An authenticated user revisiting a public-only route resumes the
		// remembered destination, or lands home.
		return Decision{Action: ActionRedirectHome, Location: resumeTarget(requestedPath)}
	}

	if identity == nil {
		return Decision{Action: ActionRedirectLogin, Location: loginRedirect(requestedPath)}
	}

	if domainauth.Authorized(identity, rule.Roles) {
		return Decision{Action: ActionAllow}
	}

	return Decision{Action: ActionRedirectHome, Location: deniedRedirect()}
}

func loginRedirect(requestedPath string) string {
	q := url.Values{}
	if requestedPath != "" && requestedPath != LoginPath {
		q.Set(ReturnURLParam, requestedPath)
	}
	if len(q) == 0 {
		return LoginPath
	}
	return LoginPath + "?" + q.Encode()
}

func deniedRedirect() string {
	q := url.Values{}
	q.Set(ErrorParam, AccessDenied)
	return HomePath + "?" + q.Encode()
}

// resumeTarget extracts a safe returnUrl from the requested path's query,
// falling back to home. Only app-relative targets are honored so redirects
// never leave the application.
func resumeTarget(requestedPath string) string {
	u, err := url.Parse(requestedPath)
	if err != nil {
		return HomePath
	}
	target := u.Query().Get(ReturnURLParam)
	if target == "" || target[0] != '/' || len(target) > 1 && target[1] == '/' {
		return HomePath
	}
	return target
}
