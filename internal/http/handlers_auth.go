package httpx

import (
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
	"github.com/escolanet/escola-ui-api/internal/guard"
)

// AuthHandlers provides the gateway's login, logout, and session endpoints.
type AuthHandlers struct {
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// Login handles POST /login. It accepts a JSON body or a form submission,
// authenticates against the school API, and establishes the credential
// session. Form submissions resume the remembered destination; JSON
// callers get the identity back.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	mgr, ok := ManagerFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.Internal("sessao do gateway indisponivel"))
		return
	}

	var req loginRequest
	isForm := isFormSubmission(r)
	if isForm {
		if err := r.ParseForm(); err != nil {
			WriteError(w, apperrors.Validation("formulario invalido"))
			return
		}
		req.Email = r.PostFormValue("email")
		req.Senha = r.PostFormValue("senha")
	} else if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Senha == "" {
		WriteError(w, apperrors.Validation("email e senha sao obrigatorios"))
		return
	}

	if err := mgr.Login(r.Context(), req.Email, req.Senha); err != nil {
		h.logger().InfoContext(r.Context(), "login rejected",
			slog.String("email", req.Email),
			slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	if isForm {
		http.Redirect(w, r, safeReturnURL(r.URL.Query().Get(guard.ReturnURLParam)), http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, mgr.Current())
}

// Logout handles POST /logout. It clears the credential session and is
// idempotent: logging out an anonymous session succeeds.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	mgr, ok := ManagerFromContext(r.Context())
	if ok {
		if err := mgr.Logout(r.Context()); err != nil {
			WriteError(w, err)
			return
		}
	}

	if isFormSubmission(r) {
		http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /session/refresh, exchanging the stored refresh
// token for a fresh pair. A session that cannot be refreshed resolves to
// an absent session and reports 401.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	mgr, ok := ManagerFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.Internal("sessao do gateway indisponivel"))
		return
	}
	if err := mgr.Refresh(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, mgr.Current())
}

// Session handles GET /session, returning the authenticated identity.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		WriteError(w, apperrors.Unauthenticated("nao autenticado"))
		return
	}
	WriteJSON(w, http.StatusOK, identity)
}

// LoginPage handles GET /login with a minimal form for manual use. The
// form posts back preserving the remembered destination.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	action := guard.LoginPath
	if ret := safeReturnURL(r.URL.Query().Get(guard.ReturnURLParam)); ret != guard.HomePath {
		q := url.Values{}
		q.Set(guard.ReturnURLParam, ret)
		action += "?" + q.Encode()
	}
	action = html.EscapeString(action)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!doctype html>
<title>EscolaNet - Login</title>
<form method="post" action="` + action + `">
  <input name="email" type="email" placeholder="email" required>
  <input name="senha" type="password" placeholder="senha" required>
  <button type="submit">Entrar</button>
</form>
`))
}

func isFormSubmission(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// safeReturnURL honors only app-relative targets so post-login redirects
// never leave the application.
func safeReturnURL(target string) string {
	if target == "" || target[0] != '/' || len(target) > 1 && target[1] == '/' {
		return guard.HomePath
	}
	return target
}
