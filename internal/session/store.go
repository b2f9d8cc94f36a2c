package session

// Package session holds the live association between issued tokens and the
// decoded identity, and orchestrates login, logout, refresh, and expiry.

import (
	"sync"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
)

// Store is the in-memory holder of the current authenticated identity.
// It backs both views of the same value: a synchronous getter and a
// subscription that replays the latest value to new observers, so the two
// representations cannot diverge. The session manager is the sole writer;
// everything else only observes.
type Store struct {
	mu        sync.Mutex
	current   *domainauth.Identity
	observers map[int]chan *domainauth.Identity
	nextID    int
}

// NewStore creates an empty store (no identity).
func NewStore() *Store {
	return &Store{observers: make(map[int]chan *domainauth.Identity)}
}

// Current returns the latest identity, or nil when no session is live.
func (s *Store) Current() *domainauth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// Set replaces the current identity and notifies observers.
func (s *Store) Set(identity domainauth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &identity
	s.broadcast()
}

// Clear removes the current identity and notifies observers with nil.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.broadcast()
}

// Observe returns a channel that immediately carries the current value and
// then the latest value after every change. A slow observer sees values
// coalesced to the most recent one; ordering is never inverted. The returned
// cancel func releases the subscription and closes the channel.
func (s *Store) Observe() (<-chan *domainauth.Identity, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *domainauth.Identity, 1)
	id := s.nextID
	s.nextID++
	s.observers[id] = ch
	s.replace(ch, s.snapshot())

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(existing)
		}
	}
	return ch, cancel
}

// broadcast pushes the current value to every observer. Caller holds mu.
func (s *Store) broadcast() {
	v := s.snapshot()
	for _, ch := range s.observers {
		s.replace(ch, v)
	}
}

// snapshot copies the current identity so observers never alias the stored
// value. Caller holds mu.
func (s *Store) snapshot() *domainauth.Identity {
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// replace swaps the buffered value in a latest-value channel. All sends
// happen under mu, so draining then sending cannot race with another send.
func (s *Store) replace(ch chan *domainauth.Identity, v *domainauth.Identity) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
