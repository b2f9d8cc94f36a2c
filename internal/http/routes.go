package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	"github.com/escolanet/escola-ui-api/internal/guard"
	"github.com/escolanet/escola-ui-api/internal/session"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Registry *session.Registry
	Clients  ClientFactory
	Cookie   CookieConfig
	Logger   *slog.Logger
}

// NewRouter builds the gateway's route table with its per-route
// authorization rules and wraps it in the standard middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	authHandlers := &AuthHandlers{Logger: logger}
	resourceHandlers := &ResourceHandlers{Clients: services.Clients}

	staff := []domainauth.Role{domainauth.RoleProfessor, domainauth.RoleServidor}
	servidor := []domainauth.Role{domainauth.RoleServidor}
	admin := []domainauth.Role{domainauth.RoleAdmin}

	handle := func(pattern string, rule guard.Rule, h http.HandlerFunc) {
		mux.Handle(pattern, Guard(rule)(h))
	}

	handle("GET /{$}", guard.Rule{Public: true}, handleHome)
	handle("GET /healthz", guard.Rule{Public: true}, handleHealth)
	handle("HEAD /healthz", guard.Rule{Public: true}, handleHealth)

	handle("GET /login", guard.Rule{PublicOnly: true}, authHandlers.LoginPage)
	handle("POST /login", guard.Rule{PublicOnly: true}, authHandlers.Login)
	handle("POST /logout", guard.Rule{Public: true}, authHandlers.Logout)
	handle("GET /session", guard.Rule{Public: true}, authHandlers.Session)
	handle("POST /session/refresh", guard.Rule{Public: true}, authHandlers.Refresh)

	// Student records are staff-visible; writes stay with administrative staff.
	handle("GET /alunos", guard.Rule{Roles: staff}, resourceHandlers.ListAlunos)
	handle("GET /alunos/{id}", guard.Rule{Roles: staff}, resourceHandlers.GetAluno)
	handle("POST /alunos", guard.Rule{Roles: servidor}, resourceHandlers.CreateAluno)
	handle("PUT /alunos/{id}", guard.Rule{Roles: servidor}, resourceHandlers.UpdateAluno)
	handle("DELETE /alunos/{id}", guard.Rule{Roles: servidor}, resourceHandlers.DeleteAluno)

	// Teacher records are visible to any authenticated user; writes are
	// admin-only (the empty role set on reads means any identity).
	handle("GET /professores", guard.Rule{}, resourceHandlers.ListProfessores)
	handle("GET /professores/{id}", guard.Rule{}, resourceHandlers.GetProfessor)
	handle("POST /professores", guard.Rule{Roles: admin}, resourceHandlers.CreateProfessor)
	handle("PUT /professores/{id}", guard.Rule{Roles: admin}, resourceHandlers.UpdateProfessor)
	handle("DELETE /professores/{id}", guard.Rule{Roles: admin}, resourceHandlers.DeleteProfessor)

	// News is public to read; staff publish and edit.
	handle("GET /noticias", guard.Rule{Public: true}, resourceHandlers.ListNoticias)
	handle("GET /noticias/{id}", guard.Rule{Public: true}, resourceHandlers.GetNoticia)
	handle("POST /noticias", guard.Rule{Roles: staff}, resourceHandlers.CreateNoticia)
	handle("PUT /noticias/{id}", guard.Rule{Roles: staff}, resourceHandlers.UpdateNoticia)
	handle("DELETE /noticias/{id}", guard.Rule{Roles: staff}, resourceHandlers.DeleteNoticia)

	var handler http.Handler = mux
	handler = SessionCookie(services.Registry, services.Cookie, logger)(handler)
	handler = Recover(logger)(handler)
	handler = Logging(logger)(handler)
	return handler
}

// handleHome reports the gateway identity state. The error query flag set
// by guard denials surfaces here so clients can show it.
func handleHome(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"app": "escola-ui-api"}
	if identity := IdentityFromContext(r.Context()); identity != nil {
		body["identity"] = identity
	}
	if msg := r.URL.Query().Get(guard.ErrorParam); msg != "" {
		body[guard.ErrorParam] = msg
	}
	WriteJSON(w, http.StatusOK, body)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
