package backend

import (
	"context"
	"fmt"
	"net/http"
)

// Resource models mirror the backend response schemas. Dates travel as
// ISO-8601 strings; the gateway passes them through untouched.

// Aluno is a student record.
type Aluno struct {
	ID             int64  `json:"id_aluno"`
	UserID         int64  `json:"id_usuario"`
	Matricula      string `json:"matricula"`
	Nome           string `json:"nome"`
	CPF            string `json:"cpf"`
	DataNascimento string `json:"data_nascimento,omitempty"`
	Endereco       string `json:"endereco,omitempty"`
	Telefone       string `json:"telefone,omitempty"`
}

// AlunoInput is the create/update payload for a student.
type AlunoInput struct {
	UserID         int64  `json:"id_usuario,omitempty"`
	Matricula      string `json:"matricula,omitempty"`
	Nome           string `json:"nome,omitempty"`
	CPF            string `json:"cpf,omitempty"`
	DataNascimento string `json:"data_nascimento,omitempty"`
	Endereco       string `json:"endereco,omitempty"`
	Telefone       string `json:"telefone,omitempty"`
}

// Professor is a teacher record.
type Professor struct {
	ID       int64  `json:"id_professor"`
	Nome     string `json:"nome"`
	CPF      string `json:"cpf"`
	Endereco string `json:"endereco,omitempty"`
	Telefone string `json:"telefone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ProfessorInput is the create/update payload for a teacher.
type ProfessorInput struct {
	Nome     string `json:"nome,omitempty"`
	CPF      string `json:"cpf,omitempty"`
	Endereco string `json:"endereco,omitempty"`
	Telefone string `json:"telefone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Noticia is a news post.
type Noticia struct {
	ID       int64  `json:"id_noticia"`
	Titulo   string `json:"titulo"`
	Conteudo string `json:"conteudo"`
	Data     string `json:"data"`
	CriadoEm string `json:"criado_em,omitempty"`
}

// NoticiaInput is the create/update payload for a news post.
type NoticiaInput struct {
	Titulo   string `json:"titulo,omitempty"`
	Conteudo string `json:"conteudo,omitempty"`
	Data     string `json:"data,omitempty"`
}

// ListAlunos returns a page of students.
func (c *Client) ListAlunos(ctx context.Context, p ListParams) ([]Aluno, error) {
	var out []Aluno
	err := c.do(ctx, request{method: http.MethodGet, path: "/alunos", query: listQuery(p)}, &out)
	return out, err
}

// GetAluno returns one student by id.
func (c *Client) GetAluno(ctx context.Context, id int64) (Aluno, error) {
	var out Aluno
	err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/alunos/%d", id)}, &out)
	return out, err
}

// CreateAluno creates a student.
func (c *Client) CreateAluno(ctx context.Context, in AlunoInput) (Aluno, error) {
	var out Aluno
	err := c.do(ctx, request{method: http.MethodPost, path: "/alunos", body: in}, &out)
	return out, err
}

// UpdateAluno updates a student.
func (c *Client) UpdateAluno(ctx context.Context, id int64, in AlunoInput) (Aluno, error) {
	var out Aluno
	err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/alunos/%d", id), body: in}, &out)
	return out, err
}

// DeleteAluno deletes a student.
func (c *Client) DeleteAluno(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/alunos/%d", id)}, nil)
}

// ListProfessores returns a page of teachers.
func (c *Client) ListProfessores(ctx context.Context, p ListParams) ([]Professor, error) {
	var out []Professor
	err := c.do(ctx, request{method: http.MethodGet, path: "/professores", query: listQuery(p)}, &out)
	return out, err
}

// GetProfessor returns one teacher by id.
func (c *Client) GetProfessor(ctx context.Context, id int64) (Professor, error) {
	var out Professor
	err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/professores/%d", id)}, &out)
	return out, err
}

// CreateProfessor creates a teacher.
func (c *Client) CreateProfessor(ctx context.Context, in ProfessorInput) (Professor, error) {
	var out Professor
	err := c.do(ctx, request{method: http.MethodPost, path: "/professores", body: in}, &out)
	return out, err
}

// UpdateProfessor updates a teacher.
func (c *Client) UpdateProfessor(ctx context.Context, id int64, in ProfessorInput) (Professor, error) {
	var out Professor
	err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/professores/%d", id), body: in}, &out)
	return out, err
}

// DeleteProfessor deletes a teacher.
func (c *Client) DeleteProfessor(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/professores/%d", id)}, nil)
}

// ListNoticias returns a page of news posts.
func (c *Client) ListNoticias(ctx context.Context, p ListParams) ([]Noticia, error) {
	var out []Noticia
	err := c.do(ctx, request{method: http.MethodGet, path: "/noticias", query: listQuery(p)}, &out)
	return out, err
}

// GetNoticia returns one news post by id.
func (c *Client) GetNoticia(ctx context.Context, id int64) (Noticia, error) {
	var out Noticia
	err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/noticias/%d", id)}, &out)
	return out, err
}

// CreateNoticia creates a news post.
func (c *Client) CreateNoticia(ctx context.Context, in NoticiaInput) (Noticia, error) {
	var out Noticia
	err := c.do(ctx, request{method: http.MethodPost, path: "/noticias", body: in}, &out)
	return out, err
}

// UpdateNoticia updates a news post.
func (c *Client) UpdateNoticia(ctx context.Context, id int64, in NoticiaInput) (Noticia, error) {
	var out Noticia
	err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/noticias/%d", id), body: in}, &out)
	return out, err
}

// DeleteNoticia deletes a news post.
func (c *Client) DeleteNoticia(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/noticias/%d", id)}, nil)
}
