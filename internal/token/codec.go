package token

// Package token decodes the claim segment of backend-issued JWTs.
// Signature verification is the backend's responsibility; the gateway only
// reads claims it needs for display and role gating, and the expiry check
// is fail-closed: anything undecodable counts as expired.

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
)

// Token kinds carried in the "type" claim.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims is the payload shape minted by the school backend.
type Claims struct {
	Email  string `json:"email"`
	Name   string `json:"nome"`
	Perfil string `json:"perfil"`
	Kind   string `json:"type"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// parseClaims splits the raw token and decodes its claim segment without
// verifying the signature.
func parseClaims(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDecode, "malformed token")
	}
	return claims, nil
}

// Decode parses a raw access token into an Identity.
// The role claim is validated against the closed role set; an unrecognized
// perfil fails decoding rather than being silently accepted. Active defaults
// to true since an issued token implies the account was active at issuance.
func Decode(raw string) (domainauth.Identity, error) {
	claims, err := parseClaims(raw)
	if err != nil {
		return domainauth.Identity{}, err
	}

	role, err := domainauth.ParseRole(claims.Perfil)
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "invalid role claim")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "invalid subject claim")
	}

	return domainauth.Identity{
		ID:     id,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   role,
		Active: true,
	}, nil
}

// IsExpired reports whether the token's exp claim is in the past.
// A token that cannot be decoded, or that carries no expiry, is expired.
func IsExpired(raw string) bool {
	claims, err := parseClaims(raw)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Before(time.Now())
}
