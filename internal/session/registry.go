package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry sizing defaults. Managers hold no durable state (credentials
// live in Redis), so eviction only costs a rebuild on the next request.
const (
	DefaultMaxManagers = 8192
	DefaultIdleTTL     = 30 * time.Minute

	sweepInterval = time.Minute
)

// ManagerFactory builds a Manager bound to one gateway session id.
// The registry calls it at most once per live id.
type ManagerFactory func(sessionID string) (*Manager, error)

// RegistryOptions bounds the registry.
type RegistryOptions struct {
	// MaxManagers caps how many managers are held at once; the least
	// recently used one is evicted at the cap. Default DefaultMaxManagers.
	MaxManagers int
	// IdleTTL evicts managers not touched for this long. Default
	// DefaultIdleTTL.
	IdleTTL time.Duration
}

// Registry maps gateway session ids to their Manager. Each browser
// session gets its own Manager so credentials never leak across users.
// The registry is bounded: idle managers are swept and the size is
// capped, so unauthenticated cookie churn cannot grow it without limit.
type Registry struct {
	mu          sync.Mutex
	factory     ManagerFactory
	entries     map[string]*registryEntry
	maxManagers int
	idleTTL     time.Duration
	lastSweep   time.Time

	now func() time.Time
}

type registryEntry struct {
	mgr      *Manager
	lastUsed time.Time
}

// NewRegistry constructs a Registry with default bounds.
func NewRegistry(factory ManagerFactory) (*Registry, error) {
	return NewRegistryWithOptions(factory, RegistryOptions{})
}

// NewRegistryWithOptions constructs a Registry with explicit bounds.
func NewRegistryWithOptions(factory ManagerFactory, opts RegistryOptions) (*Registry, error) {
	if factory == nil {
		return nil, errors.New("session registry: ManagerFactory is required")
	}
	maxManagers := opts.MaxManagers
	if maxManagers <= 0 {
		maxManagers = DefaultMaxManagers
	}
	idleTTL := opts.IdleTTL
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		factory:     factory,
		entries:     make(map[string]*registryEntry),
		maxManagers: maxManagers,
		idleTTL:     idleTTL,
		now:         time.Now,
	}, nil
}

// NewSessionID mints a fresh gateway session id.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether a cookie value is a well-formed session
// id. Only ids the gateway itself minted pass; anything else is rejected
// before it can become a manager or Redis key material.
func ValidSessionID(sessionID string) bool {
	_, err := uuid.Parse(sessionID)
	return err == nil
}

// Manager returns the Manager for the given session id, building it on
// first use. Concurrent calls for the same id share one Manager.
func (r *Registry) Manager(sessionID string) (*Manager, error) {
	if sessionID == "" {
		return nil, errors.New("session registry: sessionID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	if e, ok := r.entries[sessionID]; ok {
		e.lastUsed = now
		return e.mgr, nil
	}

	if len(r.entries) >= r.maxManagers {
		r.evictOldest()
	}

	mgr, err := r.factory(sessionID)
	if err != nil {
		return nil, err
	}
	r.entries[sessionID] = &registryEntry{mgr: mgr, lastUsed: now}
	return mgr, nil
}

// sweep drops idle entries, at most once per sweepInterval. Caller holds mu.
func (r *Registry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > r.idleTTL {
			delete(r.entries, id)
		}
	}
}

// evictOldest removes the least recently used entry. Caller holds mu.
func (r *Registry) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range r.entries {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID = id
			oldest = e.lastUsed
		}
	}
	if oldestID != "" {
		delete(r.entries, oldestID)
	}
}

// Drop forgets the Manager for a session id. Stored credentials are the
// caller's responsibility; Drop only releases the in-memory handle.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// Len reports how many managers are currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
