package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "fmt"

// Role represents an application's authorization role.
// Values mirror the backend's closed "perfil" set; keep string form for
// easy persistence and serialization.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleProfessor Role = "PROFESSOR"
	RoleAluno     Role = "ALUNO"
	RoleServidor  Role = "SERVIDOR"
)

// ParseRole validates a raw role claim against the closed role set.
// Unknown values are rejected rather than passed through, so a token with
// an unrecognized perfil never produces an Identity.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleProfessor, RoleAluno, RoleServidor:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity represents the authenticated principal decoded from an access
// token or returned by GET /users/me.
type Identity struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"nome_completo"`
	Role   Role   `json:"perfil"`
	Active bool   `json:"ativo"`
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// TokenPair is the credential set issued by the auth backend.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Authorized is the single role policy used everywhere a role check occurs:
// ADMIN satisfies every requirement, an empty requirement means any
// authenticated identity, otherwise the identity role must be in the set.
func Authorized(identity *Identity, required []Role) bool {
	if identity == nil {
		return false
	}
	if len(required) == 0 || identity.IsAdmin() {
		return true
	}
	for _, r := range required {
		if identity.Role == r {
			return true
		}
	}
	return false
}
