package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
)

func testIdentity() domainauth.Identity {
	return domainauth.Identity{
		ID:     7,
		Email:  "joao@escola.com",
		Name:   "João Souza",
		Role:   domainauth.RoleAluno,
		Active: true,
	}
}

func TestStore_CurrentEmpty(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Current())
}

func TestStore_SetThenCurrent_RoundTrip(t *testing.T) {
	s := NewStore()
	want := testIdentity()

	s.Set(want)

	got := s.Current()
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Set(testIdentity())

	first := s.Current()
	first.Email = "mutated@escola.com"

	assert.Equal(t, "joao@escola.com", s.Current().Email)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Set(testIdentity())
	s.Clear()
	assert.Nil(t, s.Current())

	// Clearing an empty store is safe.
	s.Clear()
	assert.Nil(t, s.Current())
}

func TestStore_ObserveReplaysLatest(t *testing.T) {
	s := NewStore()
	s.Set(testIdentity())

	ch, cancel := s.Observe()
	defer cancel()

	// A late subscriber gets the current value without waiting for a change.
	got := <-ch
	require.NotNil(t, got)
	assert.Equal(t, testIdentity(), *got)
}

func TestStore_ObserveEmitsOnChange(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Observe()
	defer cancel()

	assert.Nil(t, <-ch) // initial empty state

	s.Set(testIdentity())
	got := <-ch
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)

	s.Clear()
	assert.Nil(t, <-ch)
}

func TestStore_ObserveCoalescesToLatest(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Observe()
	defer cancel()

	<-ch // drain initial value

	first := testIdentity()
	second := testIdentity()
	second.ID = 8
	s.Set(first)
	s.Set(second)

	got := <-ch
	require.NotNil(t, got)
	assert.Equal(t, int64(8), got.ID)
}

func TestStore_CancelClosesChannel(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Observe()
	<-ch
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Cancel is idempotent and later writes don't panic.
	cancel()
	s.Set(testIdentity())
}
