package session

import (
	"context"
	"sync"
	"time"

	"github.com/espanolfacil/academy/core"
)

// Registry keeps one Manager per browser context.
type Registry struct {
	creds   CredentialStore
	backend Backend
	logger  core.Logger
	latency time.Duration

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(creds CredentialStore, backend Backend, logger core.Logger, latency time.Duration) *Registry {
	return &Registry{
		creds:    creds,
		backend:  backend,
		logger:   logger,
		latency:  latency,
		managers: make(map[string]*Manager),
	}
}

// Get returns the Manager of contextID, building and restoring it on first use.
// A Manager built earlier is synced with its record first, so a record deleted
// or expired meanwhile signs the context out.
func (r *Registry) Get(ctx context.Context, contextID string) *Manager {
	r.mu.Lock()
	m, cached := r.managers[contextID]
	if !cached {
		m = NewManager(r.creds, r.backend.Record(contextID), r.logger, r.latency)
		r.managers[contextID] = m
	}
	r.mu.Unlock()

	m.Restore(ctx)
	if cached {
		m.Sync(ctx)
	}
	return m
}

// Release drops the Manager of contextID when it holds no session and has no
// operation in flight. Managers handed out earlier keep working.
func (r *Registry) Release(contextID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[contextID]; ok && m.idle() {
		delete(r.managers, contextID)
	}
}

// Forget drops the Manager of a signed out context.
func (r *Registry) Forget(contextID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, contextID)
}

// Len returns the number of browser contexts with a Manager.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}
