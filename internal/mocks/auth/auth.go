package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	"github.com/escolanet/escola-ui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.AuthBackend     = (*StubAuthBackend)(nil)
)

// MemoryCredentialStore is an in-memory CredentialStore for tests.
type MemoryCredentialStore struct {
	mu       sync.Mutex
	access   string
	refresh  string
	identity *domainauth.Identity

	// FailWith, when set, is returned by every operation.
	FailWith error
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (m *MemoryCredentialStore) SaveTokens(_ context.Context, access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.access = access
	m.refresh = refresh
	return nil
}

func (m *MemoryCredentialStore) SaveIdentity(_ context.Context, identity domainauth.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.identity = &identity
	return nil
}

func (m *MemoryCredentialStore) AccessToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return "", m.FailWith
	}
	return m.access, nil
}

func (m *MemoryCredentialStore) RefreshToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return "", m.FailWith
	}
	return m.refresh, nil
}

func (m *MemoryCredentialStore) Identity(_ context.Context) (*domainauth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if m.identity == nil {
		return nil, nil
	}
	id := *m.identity
	return &id, nil
}

func (m *MemoryCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.access = ""
	m.refresh = ""
	m.identity = nil
	return nil
}

// Empty reports whether nothing is persisted.
func (m *MemoryCredentialStore) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access == "" && m.refresh == "" && m.identity == nil
}

// StubAuthBackend is a func-field test double for ports.AuthBackend.
type StubAuthBackend struct {
	LoginFunc   func(ctx context.Context, email, senha string) (domainauth.TokenPair, error)
	RefreshFunc func(ctx context.Context, refreshToken string) (domainauth.TokenPair, error)
	MeFunc      func(ctx context.Context, accessToken string) (domainauth.Identity, error)

	LoginCalls   int
	RefreshCalls int
	MeCalls      int
}

func (s *StubAuthBackend) Login(ctx context.Context, email, senha string) (domainauth.TokenPair, error) {
	s.LoginCalls++
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, email, senha)
	}
	return domainauth.TokenPair{}, errors.New("not implemented")
}

func (s *StubAuthBackend) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	s.RefreshCalls++
	if s.RefreshFunc != nil {
		return s.RefreshFunc(ctx, refreshToken)
	}
	return domainauth.TokenPair{}, errors.New("not implemented")
}

func (s *StubAuthBackend) Me(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	s.MeCalls++
	if s.MeFunc != nil {
		return s.MeFunc(ctx, accessToken)
	}
	return domainauth.Identity{}, errors.New("not implemented")
}
