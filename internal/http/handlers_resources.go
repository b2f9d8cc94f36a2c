package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/escolanet/escola-ui-api/internal/backend"
	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
	"github.com/escolanet/escola-ui-api/internal/guard"
	"github.com/escolanet/escola-ui-api/internal/session"
)

// ClientFactory yields the backend client bound to one gateway session.
// The client's transport authenticates outbound calls with that session's
// access token.
type ClientFactory func(mgr *session.Manager) (*backend.Client, error)

// ResourceHandlers proxies the school API's resource endpoints, relaying
// pagination and propagating the backend's error taxonomy.
type ResourceHandlers struct {
	Clients ClientFactory
}

func (h *ResourceHandlers) client(w http.ResponseWriter, r *http.Request) (*backend.Client, bool) {
	mgr, ok := ManagerFromContext(r.Context())
	if !ok {
		WriteError(w, apperrors.Internal("sessao do gateway indisponivel"))
		return nil, false
	}
	client, err := h.Clients(mgr)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return client, true
}

// respondError renders a backend error from a proxied call. Browser
// navigations get the guard's redirect semantics: a dead credential sends
// the user to the login page with the path remembered, a backend denial
// lands home with the denial flag. API callers get the JSON taxonomy.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if prefersHTML(r) {
		switch {
		case apperrors.IsUnauthenticated(err):
			q := url.Values{}
			q.Set(guard.ReturnURLParam, r.URL.RequestURI())
			http.Redirect(w, r, guard.LoginPath+"?"+q.Encode(), http.StatusFound)
			return
		case apperrors.IsForbidden(err):
			http.Redirect(w, r, guard.HomePath+"?"+guard.ErrorParam+"="+guard.AccessDenied, http.StatusFound)
			return
		}
	}
	WriteError(w, err)
}

func prefersHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func listParams(r *http.Request) backend.ListParams {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return backend.ListParams{Skip: skip, Limit: limit, Search: q.Get("search")}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, apperrors.Validation("id invalido"))
		return 0, false
	}
	return id, true
}

func (h *ResourceHandlers) ListAlunos(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	alunos, err := client.ListAlunos(r.Context(), listParams(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, alunos)
}

func (h *ResourceHandlers) GetAluno(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	aluno, err := client.GetAluno(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, aluno)
}

func (h *ResourceHandlers) CreateAluno(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	var in backend.AlunoInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	aluno, err := client.CreateAluno(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, aluno)
}

func (h *ResourceHandlers) UpdateAluno(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in backend.AlunoInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	aluno, err := client.UpdateAluno(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, aluno)
}

func (h *ResourceHandlers) DeleteAluno(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := client.DeleteAluno(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResourceHandlers) ListProfessores(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	professores, err := client.ListProfessores(r.Context(), listParams(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, professores)
}

func (h *ResourceHandlers) GetProfessor(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	professor, err := client.GetProfessor(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, professor)
}

func (h *ResourceHandlers) CreateProfessor(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	var in backend.ProfessorInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	professor, err := client.CreateProfessor(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, professor)
}

func (h *ResourceHandlers) UpdateProfessor(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in backend.ProfessorInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	professor, err := client.UpdateProfessor(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, professor)
}

func (h *ResourceHandlers) DeleteProfessor(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := client.DeleteProfessor(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResourceHandlers) ListNoticias(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	noticias, err := client.ListNoticias(r.Context(), listParams(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, noticias)
}

func (h *ResourceHandlers) GetNoticia(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	noticia, err := client.GetNoticia(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, noticia)
}

func (h *ResourceHandlers) CreateNoticia(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	var in backend.NoticiaInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	noticia, err := client.CreateNoticia(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, noticia)
}

func (h *ResourceHandlers) UpdateNoticia(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in backend.NoticiaInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	noticia, err := client.UpdateNoticia(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, noticia)
}

func (h *ResourceHandlers) DeleteNoticia(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := client.DeleteNoticia(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
