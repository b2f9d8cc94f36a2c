package devbackend

// Package devbackend provides an in-process ports.AuthBackend for local
// development. It verifies a static credential set and mints HS256-signed
// tokens locally, so the gateway can run without a live school API.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
	"github.com/escolanet/escola-ui-api/internal/ports"
	"github.com/escolanet/escola-ui-api/internal/token"
)

// User is one static dev account.
type User struct {
	ID     int64
	Email  string
	Senha  string
	Name   string
	Perfil domainauth.Role
}

// Config controls the dev backend behavior.
type Config struct {
	Users      []User
	SigningKey []byte        // default derived key when empty
	AccessTTL  time.Duration // default 30m when zero
	RefreshTTL time.Duration // default 7d when zero
}

// Backend implements ports.AuthBackend against an in-memory user set.
type Backend struct {
	users      map[string]User
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

var _ ports.AuthBackend = (*Backend)(nil)

// NewBackend constructs a dev backend from Config.
func NewBackend(cfg Config) (*Backend, error) {
	if len(cfg.Users) == 0 {
		return nil, errors.New("dev backend: at least one user is required")
	}
	users := make(map[string]User, len(cfg.Users))
	for _, u := range cfg.Users {
		if u.Email == "" || u.Senha == "" {
			return nil, fmt.Errorf("dev backend: user %d needs email and senha", u.ID)
		}
		if _, err := domainauth.ParseRole(string(u.Perfil)); err != nil {
			return nil, fmt.Errorf("dev backend: user %s: %w", u.Email, err)
		}
		users[u.Email] = u
	}
	key := cfg.SigningKey
	if len(key) == 0 {
		key = []byte("escola-dev-signing-key")
	}
	accessTTL := cfg.AccessTTL
	if accessTTL == 0 {
		accessTTL = 30 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Backend{
		users:      users,
		signingKey: key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Login checks the credential pair and mints a fresh token pair.
func (b *Backend) Login(_ context.Context, email, senha string) (domainauth.TokenPair, error) {
	u, ok := b.users[email]
	if !ok || u.Senha != senha {
		return domainauth.TokenPair{}, apperrors.Unauthenticated("credenciais incorretas")
	}
	return b.mintPair(u)
}

// Refresh validates the refresh token signature and kind, then mints a new pair.
func (b *Backend) Refresh(_ context.Context, refreshToken string) (domainauth.TokenPair, error) {
	claims := &token.Claims{}
	parsed, err := jwt.ParseWithClaims(refreshToken, claims, b.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return domainauth.TokenPair{}, apperrors.Unauthenticated("refresh token invalido")
	}
	if claims.Kind != token.KindRefresh {
		return domainauth.TokenPair{}, apperrors.Unauthenticated("token nao e de refresh")
	}
	u, ok := b.userBySubject(claims.Subject)
	if !ok {
		return domainauth.TokenPair{}, apperrors.Unauthenticated("usuario desconhecido")
	}
	return b.mintPair(u)
}

// Me validates the access token and returns the identity it carries.
func (b *Backend) Me(_ context.Context, accessToken string) (domainauth.Identity, error) {
	claims := &token.Claims{}
	parsed, err := jwt.ParseWithClaims(accessToken, claims, b.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return domainauth.Identity{}, apperrors.Unauthenticated("access token invalido")
	}
	if claims.Kind != token.KindAccess {
		return domainauth.Identity{}, apperrors.Unauthenticated("token nao e de acesso")
	}
	u, ok := b.userBySubject(claims.Subject)
	if !ok {
		return domainauth.Identity{}, apperrors.Unauthenticated("usuario desconhecido")
	}
	return identityFor(u), nil
}

func (b *Backend) keyFunc(_ *jwt.Token) (interface{}, error) {
	return b.signingKey, nil
}

func (b *Backend) userBySubject(sub string) (User, bool) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return User{}, false
	}
	for _, u := range b.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (b *Backend) mintPair(u User) (domainauth.TokenPair, error) {
	now := time.Now()
	access, err := b.sign(u, token.KindAccess, now, now.Add(b.accessTTL))
	if err != nil {
		return domainauth.TokenPair{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "sign access token")
	}
	refresh, err := b.sign(u, token.KindRefresh, now, now.Add(b.refreshTTL))
	if err != nil {
		return domainauth.TokenPair{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "sign refresh token")
	}
	return domainauth.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (b *Backend) sign(u User, kind string, issuedAt, expiresAt time.Time) (string, error) {
	claims := token.Claims{
		Email:  u.Email,
		Name:   u.Name,
		Perfil: string(u.Perfil),
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.signingKey)
}

func identityFor(u User) domainauth.Identity {
	return domainauth.Identity{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Perfil,
		Active: true,
	}
}
