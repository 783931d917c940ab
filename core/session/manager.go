package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidSignUp      = errors.New("email, password, first name and last name are required")
	// ErrSuperseded is returned by an operation whose result was discarded
	// because a later sign-in, sign-up or sign-out was issued before it resolved.
	ErrSuperseded = errors.New("superseded by a later session operation")
)

// Manager owns the session of one browser context.
// It is safe for concurrent use.
type Manager struct {
	creds   CredentialStore
	store   Store
	logger  core.Logger
	latency time.Duration

	restoreOnce sync.Once
	writeMu     sync.Mutex // serializes current+record updates

	mu       sync.RWMutex
	current  *identity.Identity
	restored bool
	pending  int
	seq      uint64        // ticket of the last issued operation
	changed  chan struct{} // closed on every state change
}

func NewManager(creds CredentialStore, store Store, logger core.Logger, latency time.Duration) *Manager {
	return &Manager{
		creds:   creds,
		store:   store,
		logger:  logger,
		latency: latency,
		changed: make(chan struct{}),
	}
}

// Current returns the signed in identity, if any.
func (m *Manager) Current() (identity.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return identity.Identity{}, false
	}
	return *m.current, true
}

// Loading is true until Restore has run and while a sign-in or sign-up is outstanding.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading()
}

func (m *Manager) loading() bool {
	return !m.restored || m.pending > 0
}

// Wait blocks until the manager stops loading or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	for {
		m.mu.RLock()
		if !m.loading() {
			m.mu.RUnlock()
			return nil
		}
		ch := m.changed
		m.mu.RUnlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// notify wakes up waiters. m.mu must be held.
func (m *Manager) notify() {
	close(m.changed)
	m.changed = make(chan struct{})
}

// Restore loads the persisted session record. Only the first call does any
// work. A malformed record is deleted and treated as no session.
func (m *Manager) Restore(ctx context.Context) {
	m.restoreOnce.Do(func() {
		m.writeMu.Lock()
		defer m.writeMu.Unlock()

		restored, _ := m.readRecord(ctx)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.seq == 0 { // nothing was issued meanwhile
			m.current = restored
		}
		m.restored = true
		m.notify()
	})
}

// readRecord returns the identity of the stored record, nil when there is none.
// ok is false when the store could not be read.
func (m *Manager) readRecord(ctx context.Context) (_ *identity.Identity, ok bool) {
	data, err := m.store.Get(ctx)
	if err != nil {
		if errors.Cause(err) != ErrNoRecord {
			m.logger.Error(fmt.Sprintf("reading session record: %v", err), err)
			return nil, false
		}
		return nil, true
	}
	i, err := decodeRecord(data)
	if err != nil {
		m.logger.Warn("discarding session record", err)
		if err := m.store.Delete(ctx); err != nil {
			m.logger.Error(fmt.Sprintf("deleting session record: %v", err), err)
		}
		return nil, true
	}
	return &i, true
}

// Sync re-reads the record of a restored, idle manager and follows it: a
// missing record signs the manager out, a record written by another process
// becomes the current identity. Store read errors leave the state untouched.
func (m *Manager) Sync(ctx context.Context) {
	m.mu.RLock()
	busy := m.loading()
	seq := m.seq
	m.mu.RUnlock()
	if busy {
		return
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	i, ok := m.readRecord(ctx)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq != seq || m.loading() { // an operation was issued meanwhile
		return
	}
	if i == nil && m.current == nil {
		return
	}
	m.current = i
	m.notify()
}

// idle reports whether the manager holds no session and nothing is in flight.
func (m *Manager) idle() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.loading() && m.current == nil
}

// SignIn resolves email (case-insensitive) and password to an identity and
// makes it the current one.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	ticket := m.begin()
	defer m.end()

	if err := m.simulateLatency(ctx); err != nil {
		return err
	}

	email = core.CleanString(email)
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	i, ok := m.creds.Find(func(i identity.Identity) bool { return strings.EqualFold(i.Email, email) })
	if !ok || i.CheckPassword(password) != nil {
		return ErrInvalidCredentials
	}
	return m.commit(ctx, ticket, i)
}

// SignUp registers a new student and signs them in. When a later operation is
// issued after the account was appended, SignUp returns nil and leaves the
// session to that operation.
func (m *Manager) SignUp(ctx context.Context, email, password string, profile identity.Profile) error {
	ticket := m.begin()
	defer m.end()

	if err := m.simulateLatency(ctx); err != nil {
		return err
	}

	email = core.CleanString(email, true /* lower */)
	profile.Clean()
	if email == "" || password == "" || profile.FirstName == "" || profile.LastName == "" {
		return ErrInvalidSignUp
	}
	if m.stale(ticket) {
		return ErrSuperseded
	}

	i := identity.Identity{
		Email:           email,
		Role:            identity.RoleStudent,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		Phone:           profile.Phone,
		City:            profile.City,
		DateOfBirth:     profile.DateOfBirth,
		Profession:      profile.Profession,
		DateInscription: core.Today(),
		Status:          identity.StatusActive,
	}
	if err := i.SetPassword(password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	i, err := m.creds.Append(i)
	if err != nil {
		if errors.Cause(err) == identity.ErrEmailExists {
			return ErrEmailTaken
		}
		return errors.Wrap(err, "appending identity")
	}

	// The account exists from here on. A later operation only takes over the
	// session, so the sign-up itself still succeeds.
	if err := m.commit(ctx, ticket, i); errors.Cause(err) != ErrSuperseded {
		return err
	}
	return nil
}

// SignOut clears the current identity and its record. Record deletion failures
// are logged, never returned.
func (m *Manager) SignOut(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	m.seq++
	m.current = nil
	m.notify()
	m.mu.Unlock()

	if err := m.store.Delete(ctx); err != nil {
		m.logger.Error(fmt.Sprintf("deleting session record: %v", err), err)
	}
}

func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.pending++
	m.notify()
	return m.seq
}

func (m *Manager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--
	m.notify()
}

func (m *Manager) stale(ticket uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq != ticket
}

// commit persists i and makes it current, unless a later operation was issued.
func (m *Manager) commit(ctx context.Context, ticket uint64, i identity.Identity) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.stale(ticket) {
		return ErrSuperseded
	}
	data, err := encodeRecord(i)
	if err != nil {
		return errors.Wrap(err, "encoding session record")
	}
	if err := m.store.Set(ctx, data); err != nil {
		return errors.Wrap(err, "writing session record")
	}

	m.mu.Lock()
	m.current = &i
	m.notify()
	m.mu.Unlock()
	return nil
}

func (m *Manager) simulateLatency(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
