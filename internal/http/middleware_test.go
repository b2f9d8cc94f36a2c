package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocksauth "github.com/escolanet/escola-ui-api/internal/mocks/auth"
	"github.com/escolanet/escola-ui-api/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) *session.Registry {
	t.Helper()
	reg, err := session.NewRegistry(func(sessionID string) (*session.Manager, error) {
		return session.NewManager(session.ManagerOptions{
			Backend:     &mocksauth.StubAuthBackend{},
			Credentials: mocksauth.NewMemoryCredentialStore(),
		})
	})
	require.NoError(t, err)
	return reg
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogging_PassesResponseThrough(t *testing.T) {
	h := Logging(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestSessionCookie_AssignsAndExposesManager(t *testing.T) {
	reg := newTestRegistry(t)
	var sawManager bool
	h := SessionCookie(reg, CookieConfig{}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawManager = ManagerFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.True(t, sawManager)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, DefaultCookieName, rec.Result().Cookies()[0].Name)
}

func TestSessionCookie_ReusesExistingCookie(t *testing.T) {
	reg := newTestRegistry(t)
	var managers []*session.Manager
	h := SessionCookie(reg, CookieConfig{}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mgr, _ := ManagerFromContext(r.Context())
		managers = append(managers, mgr)
	}))

	id := session.NewSessionID()
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: id})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Empty(t, rec.Result().Cookies(), "no new cookie for an existing session")
	}

	require.Len(t, managers, 2)
	assert.Same(t, managers[0], managers[1])
}

func TestSessionCookie_RejectsForgedCookieValues(t *testing.T) {
	reg := newTestRegistry(t)
	h := SessionCookie(reg, CookieConfig{}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i, forged := range []string{"forged-1", "forged-2", "forged-3"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: forged})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Len(t, rec.Result().Cookies(), 1, "request %d gets a replacement cookie", i)
		replacement := rec.Result().Cookies()[0]
		assert.NotEqual(t, forged, replacement.Value)
		assert.True(t, session.ValidSessionID(replacement.Value))
	}

	assert.Equal(t, 3, reg.Len(), "only minted ids reach the registry")
}

func TestSessionCookie_CustomName(t *testing.T) {
	reg := newTestRegistry(t)
	h := SessionCookie(reg, CookieConfig{Name: "sid"}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, "sid", rec.Result().Cookies()[0].Name)
}
