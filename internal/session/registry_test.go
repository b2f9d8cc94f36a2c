package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocksauth "github.com/escolanet/escola-ui-api/internal/mocks/auth"
)

func newRegistryFactory(t *testing.T) ManagerFactory {
	t.Helper()
	return func(sessionID string) (*Manager, error) {
		return NewManager(ManagerOptions{
			Backend:     &mocksauth.StubAuthBackend{},
			Credentials: mocksauth.NewMemoryCredentialStore(),
		})
	}
}

func TestNewRegistry_RequiresFactory(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)
}

func TestRegistry_ReusesManagerPerSession(t *testing.T) {
	reg, err := NewRegistry(newRegistryFactory(t))
	require.NoError(t, err)

	a1, err := reg.Manager("sess-a")
	require.NoError(t, err)
	a2, err := reg.Manager("sess-a")
	require.NoError(t, err)
	b, err := reg.Manager("sess-b")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_EmptySessionID(t *testing.T) {
	reg, err := NewRegistry(newRegistryFactory(t))
	require.NoError(t, err)

	_, err = reg.Manager("")
	assert.Error(t, err)
}

func TestRegistry_FactoryErrorNotCached(t *testing.T) {
	fail := true
	reg, err := NewRegistry(func(sessionID string) (*Manager, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return NewManager(ManagerOptions{
			Backend:     &mocksauth.StubAuthBackend{},
			Credentials: mocksauth.NewMemoryCredentialStore(),
		})
	})
	require.NoError(t, err)

	_, err = reg.Manager("sess-a")
	require.Error(t, err)
	assert.Equal(t, 0, reg.Len())

	fail = false
	_, err = reg.Manager("sess-a")
	require.NoError(t, err)
}

func TestRegistry_Drop(t *testing.T) {
	reg, err := NewRegistry(newRegistryFactory(t))
	require.NoError(t, err)

	first, err := reg.Manager("sess-a")
	require.NoError(t, err)
	reg.Drop("sess-a")

	second, err := reg.Manager("sess-a")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistry_EvictsOldestAtCap(t *testing.T) {
	reg, err := NewRegistryWithOptions(newRegistryFactory(t), RegistryOptions{MaxManagers: 2})
	require.NoError(t, err)

	// Deterministic clock so entry ages are strictly ordered.
	base := time.Now()
	tick := 0
	reg.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := reg.Manager("sess-a")
	require.NoError(t, err)
	_, err = reg.Manager("sess-b")
	require.NoError(t, err)
	_, err = reg.Manager("sess-c")
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())

	rebuilt, err := reg.Manager("sess-a")
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt, "least recently used entry was evicted")
}

func TestRegistry_SweepsIdleManagers(t *testing.T) {
	reg, err := NewRegistryWithOptions(newRegistryFactory(t), RegistryOptions{IdleTTL: 10 * time.Minute})
	require.NoError(t, err)

	base := time.Now()
	reg.now = func() time.Time { return base }

	_, err = reg.Manager("sess-a")
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	reg.now = func() time.Time { return base.Add(11 * time.Minute) }
	_, err = reg.Manager("sess-b")
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Len(), "idle manager swept on access")
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, ValidSessionID(NewSessionID()))
	assert.False(t, ValidSessionID(""))
	assert.False(t, ValidSessionID("forged-cookie-value"))
	assert.False(t, ValidSessionID("../../etc/passwd"))
}

func TestRegistry_ConcurrentSameID(t *testing.T) {
	reg, err := NewRegistry(newRegistryFactory(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	managers := make([]*Manager, 8)
	for i := range managers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mgr, err := reg.Manager("sess-a")
			assert.NoError(t, err)
			managers[i] = mgr
		}(i)
	}
	wg.Wait()

	for _, mgr := range managers[1:] {
		assert.Same(t, managers[0], mgr)
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.Len(t, NewSessionID(), 36)
}
