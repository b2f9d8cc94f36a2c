package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
	"github.com/escolanet/escola-ui-api/internal/mocks"
	mockauth "github.com/escolanet/escola-ui-api/internal/mocks/auth"
	"github.com/escolanet/escola-ui-api/internal/token"
)

func mintAccessToken(t *testing.T, perfil string, exp time.Time) string {
	t.Helper()
	claims := token.Claims{
		Email:  "maria@escola.com",
		Name:   "Maria Silva",
		Perfil: perfil,
		Kind:   token.KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func newTestManager(t *testing.T, backend *mocks.MockAuthBackend) (*Manager, *mockauth.MemoryCredentialStore) {
	t.Helper()
	creds := mockauth.NewMemoryCredentialStore()
	mgr, err := NewManager(ManagerOptions{Backend: backend, Credentials: creds})
	require.NoError(t, err)
	return mgr, creds
}

func TestNewManager_RequiredDependencies(t *testing.T) {
	_, err := NewManager(ManagerOptions{Credentials: mockauth.NewMemoryCredentialStore()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthBackend is required")

	_, err = NewManager(ManagerOptions{Backend: &mockauth.StubAuthBackend{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CredentialStore is required")
}

func TestManager_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mintAccessToken(t, "PROFESSOR", time.Now().Add(time.Hour))
	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), "maria@escola.com", "senha123").
		Return(domainauth.TokenPair{AccessToken: access, RefreshToken: "refresh-1", TokenType: "bearer"}, nil)

	mgr, creds := newTestManager(t, backend)
	ctx := context.Background()

	require.NoError(t, mgr.Login(ctx, "maria@escola.com", "senha123"))

	current := mgr.Current()
	require.NotNil(t, current)
	assert.Equal(t, int64(42), current.ID)
	assert.Equal(t, domainauth.RoleProfessor, current.Role)

	storedAccess, err := creds.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, access, storedAccess)
	storedRefresh, err := creds.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", storedRefresh)
}

func TestManager_Login_BackendError_LeavesStateUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domainauth.TokenPair{}, apperrors.Unauthenticated("invalid credentials"))

	mgr, creds := newTestManager(t, backend)

	err := mgr.Login(context.Background(), "maria@escola.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.Nil(t, mgr.Current())
	assert.True(t, creds.Empty())
}

func TestManager_Login_UndecodableToken_FallsBackToMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	identity := domainauth.Identity{ID: 9, Email: "x@escola.com", Role: domainauth.RoleAdmin, Active: true}
	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domainauth.TokenPair{AccessToken: "opaque-token", RefreshToken: "r"}, nil)
	backend.EXPECT().
		Me(gomock.Any(), "opaque-token").
		Return(identity, nil)

	mgr, _ := newTestManager(t, backend)

	require.NoError(t, mgr.Login(context.Background(), "x@escola.com", "s"))
	current := mgr.Current()
	require.NotNil(t, current)
	assert.Equal(t, identity, *current)
}

func TestManager_Login_UndecodableToken_MeFails_FullyAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domainauth.TokenPair{AccessToken: "opaque-token", RefreshToken: "r"}, nil)
	backend.EXPECT().
		Me(gomock.Any(), "opaque-token").
		Return(domainauth.Identity{}, apperrors.Unauthenticated("bad token"))

	mgr, creds := newTestManager(t, backend)

	err := mgr.Login(context.Background(), "x@escola.com", "s")
	require.Error(t, err)
	// No partial state: tokens were persisted mid-operation but the failed
	// identity resolution clears everything.
	assert.Nil(t, mgr.Current())
	assert.True(t, creds.Empty())
}

func TestManager_Login_IdentityPersistFails_ClearsCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mintAccessToken(t, "PROFESSOR", time.Now().Add(time.Hour))
	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domainauth.TokenPair{AccessToken: access, RefreshToken: "r"}, nil)

	creds := mocks.NewMockCredentialStore(ctrl)
	creds.EXPECT().SaveTokens(gomock.Any(), access, "r").Return(nil)
	creds.EXPECT().SaveIdentity(gomock.Any(), gomock.Any()).Return(apperrors.Internal("redis write failed"))
	// The persisted tokens must not outlive the failed login.
	creds.EXPECT().Clear(gomock.Any()).Return(nil)

	mgr, err := NewManager(ManagerOptions{Backend: backend, Credentials: creds})
	require.NoError(t, err)

	err = mgr.Login(context.Background(), "maria@escola.com", "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist identity")
	assert.Nil(t, mgr.Current())
}

func TestManager_Logout_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mintAccessToken(t, "ALUNO", time.Now().Add(time.Hour))
	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domainauth.TokenPair{AccessToken: access, RefreshToken: "r"}, nil)

	mgr, creds := newTestManager(t, backend)
	ctx := context.Background()
	require.NoError(t, mgr.Login(ctx, "a@escola.com", "s"))

	require.NoError(t, mgr.Logout(ctx))
	assert.Nil(t, mgr.Current())
	assert.True(t, creds.Empty())

	require.NoError(t, mgr.Logout(ctx))
	assert.Nil(t, mgr.Current())
	assert.True(t, creds.Empty())
}

func TestManager_Refresh_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	oldAccess := mintAccessToken(t, "ALUNO", time.Now().Add(time.Minute))
	newAccess := mintAccessToken(t, "ALUNO", time.Now().Add(time.Hour))

	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domainauth.TokenPair{AccessToken: oldAccess, RefreshToken: "refresh-old"}, nil)
	backend.EXPECT().
		Refresh(gomock.Any(), "refresh-old").
		Return(domainauth.TokenPair{AccessToken: newAccess, RefreshToken: "refresh-new"}, nil)

	mgr, creds := newTestManager(t, backend)
	ctx := context.Background()
	require.NoError(t, mgr.Login(ctx, "a@escola.com", "s"))

	require.NoError(t, mgr.Refresh(ctx))

	storedAccess, err := creds.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, newAccess, storedAccess)
	storedRefresh, err := creds.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-new", storedRefresh)
	require.NotNil(t, mgr.Current())
}

func TestManager_Refresh_Failure_ForcesLogout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mintAccessToken(t, "ALUNO", time.Now().Add(time.Hour))
	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domainauth.TokenPair{AccessToken: access, RefreshToken: "refresh-dead"}, nil)
	backend.EXPECT().
		Refresh(gomock.Any(), "refresh-dead").
		Return(domainauth.TokenPair{}, apperrors.Unauthenticated("refresh token revoked"))

	mgr, creds := newTestManager(t, backend)
	ctx := context.Background()
	require.NoError(t, mgr.Login(ctx, "a@escola.com", "s"))

	err := mgr.Refresh(ctx)
	require.Error(t, err)
	assert.Nil(t, mgr.Current())
	assert.True(t, creds.Empty())
}

func TestManager_Refresh_NoToken(t *testing.T) {
	mgr, _ := newTestManager(t, mocks.NewMockAuthBackend(gomock.NewController(t)))

	err := mgr.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestManager_Token_Valid(t *testing.T) {
	backend := &mockauth.StubAuthBackend{}
	creds := mockauth.NewMemoryCredentialStore()
	mgr, err := NewManager(ManagerOptions{Backend: backend, Credentials: creds})
	require.NoError(t, err)

	ctx := context.Background()
	access := mintAccessToken(t, "ADMIN", time.Now().Add(time.Hour))
	require.NoError(t, creds.SaveTokens(ctx, access, "r"))

	got, err := mgr.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, access, got)
}

func TestManager_Token_Expired_TriggersLogout(t *testing.T) {
	backend := &mockauth.StubAuthBackend{}
	creds := mockauth.NewMemoryCredentialStore()
	mgr, err := NewManager(ManagerOptions{Backend: backend, Credentials: creds})
	require.NoError(t, err)

	ctx := context.Background()
	access := mintAccessToken(t, "ADMIN", time.Now().Add(-time.Minute))
	require.NoError(t, creds.SaveTokens(ctx, access, "r"))

	got, err := mgr.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, creds.Empty(), "expired token must not survive the read")
}

func TestManager_Token_Absent(t *testing.T) {
	mgr, _ := newTestManager(t, mocks.NewMockAuthBackend(gomock.NewController(t)))

	got, err := mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestManager_Restore_FromCachedIdentity(t *testing.T) {
	backend := &mockauth.StubAuthBackend{}
	creds := mockauth.NewMemoryCredentialStore()
	mgr, err := NewManager(ManagerOptions{Backend: backend, Credentials: creds})
	require.NoError(t, err)

	ctx := context.Background()
	access := mintAccessToken(t, "PROFESSOR", time.Now().Add(time.Hour))
	require.NoError(t, creds.SaveTokens(ctx, access, "r"))
	identity := domainauth.Identity{ID: 42, Email: "maria@escola.com", Role: domainauth.RoleProfessor, Active: true}
	require.NoError(t, creds.SaveIdentity(ctx, identity))

	require.NoError(t, mgr.Restore(ctx))
	current := mgr.Current()
	require.NotNil(t, current)
	assert.Equal(t, identity, *current)
	assert.Zero(t, backend.MeCalls, "cached identity must not hit the backend")
}

func TestManager_Restore_NoCachedIdentity_UsesMe(t *testing.T) {
	identity := domainauth.Identity{ID: 5, Email: "s@escola.com", Role: domainauth.RoleServidor, Active: true}
	backend := &mockauth.StubAuthBackend{
		MeFunc: func(_ context.Context, _ string) (domainauth.Identity, error) {
			return identity, nil
		},
	}
	creds := mockauth.NewMemoryCredentialStore()
	mgr, err := NewManager(ManagerOptions{Backend: backend, Credentials: creds})
	require.NoError(t, err)

	ctx := context.Background()
	access := mintAccessToken(t, "SERVIDOR", time.Now().Add(time.Hour))
	require.NoError(t, creds.SaveTokens(ctx, access, "r"))

	require.NoError(t, mgr.Restore(ctx))
	current := mgr.Current()
	require.NotNil(t, current)
	assert.Equal(t, identity, *current)
	assert.Equal(t, 1, backend.MeCalls)
}

func TestManager_Restore_ExpiredToken_ResolvesAbsent(t *testing.T) {
	backend := &mockauth.StubAuthBackend{}
	creds := mockauth.NewMemoryCredentialStore()
	mgr, err := NewManager(ManagerOptions{Backend: backend, Credentials: creds})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, creds.SaveTokens(ctx, mintAccessToken(t, "ALUNO", time.Now().Add(-time.Hour)), "r"))

	require.NoError(t, mgr.Restore(ctx))
	assert.Nil(t, mgr.Current())
	assert.True(t, creds.Empty())
}

func TestManager_HasRole(t *testing.T) {
	mgr, _ := newTestManager(t, mocks.NewMockAuthBackend(gomock.NewController(t)))

	assert.False(t, mgr.HasRole(domainauth.RoleAluno))

	mgr.Store().Set(domainauth.Identity{ID: 1, Role: domainauth.RoleProfessor})
	assert.True(t, mgr.HasRole(domainauth.RoleProfessor))
	assert.False(t, mgr.HasRole(domainauth.RoleAluno))
	assert.True(t, mgr.HasAnyRole(domainauth.RoleAluno, domainauth.RoleProfessor))

	// ADMIN satisfies every role check.
	mgr.Store().Set(domainauth.Identity{ID: 2, Role: domainauth.RoleAdmin})
	assert.True(t, mgr.HasRole(domainauth.RoleProfessor))
	assert.True(t, mgr.HasAnyRole(domainauth.RoleAluno))
}
