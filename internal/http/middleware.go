package httpx

// Package httpx is the gateway's HTTP layer: middleware that binds a
// browser to its credential session, guard execution, and the JSON
// handlers for auth and the proxied school resources.

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/escolanet/escola-ui-api/internal/guard"
	"github.com/escolanet/escola-ui-api/internal/session"
)

// DefaultCookieName is the gateway session cookie.
const DefaultCookieName = "escola_session"

// Logging returns a middleware that logs each request with its outcome.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that turns panics into 500 responses.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CookieConfig controls the gateway session cookie.
type CookieConfig struct {
	Name   string // default DefaultCookieName
	Domain string
	Secure bool
	MaxAge time.Duration // default 7 days when zero
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

func (c CookieConfig) maxAge() int {
	if c.MaxAge == 0 {
		return int((7 * 24 * time.Hour).Seconds())
	}
	return int(c.MaxAge.Seconds())
}

// SessionCookie returns the middleware that binds a browser to its
// credential session. It assigns a session id cookie on first contact,
// restores the session's identity from the credential store, and places
// the Manager and identity in the request context. Restore failures
// leave the request anonymous rather than failing it.
func SessionCookie(registry *session.Registry, cfg CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(cfg.name()); err == nil {
				sessionID = cookie.Value
			}
			// Only ids the gateway minted are honored; a forged value must
			// not reach the registry or become Redis key material.
			if !session.ValidSessionID(sessionID) {
				sessionID = session.NewSessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.name(),
					Value:    sessionID,
					Path:     "/",
					Domain:   cfg.Domain,
					MaxAge:   cfg.maxAge(),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			mgr, err := registry.Manager(sessionID)
			if err != nil {
				logger.ErrorContext(r.Context(), "session manager unavailable",
					slog.String("error", err.Error()))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if err := mgr.Restore(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "session restore failed, continuing anonymous",
					slog.String("error", err.Error()))
			}

			ctx := SetManagerInContext(r.Context(), mgr)
			ctx = SetIdentityInContext(ctx, mgr.Current())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Guard returns a middleware that executes the route's authorization rule.
// Denials are redirects: anonymous users go to the login page with the
// requested path remembered, role mismatches land home with an error flag.
func Guard(rule guard.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Evaluate(IdentityFromContext(r.Context()), rule, r.URL.RequestURI())
			if !decision.Allowed() {
				http.Redirect(w, r, decision.Location, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
