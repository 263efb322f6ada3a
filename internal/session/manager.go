// Package session owns the client's authentication state: the bearer
// token and the cached user record. The pair is kept consistent with
// durable storage at all times, failing closed to "logged out" on any
// ambiguity.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"fitcoach-client/internal/domain"
	"fitcoach-client/internal/keystore"
)

type State int

const (
	StateCleared State = iota
	StateEstablished
)

// Manager is the single source of truth for "who is logged in". All
// access to the (token, user) pair is serialized behind one mutex so
// readers never observe a token without its identity.
type Manager struct {
	store keystore.Store
	log   *zap.SugaredLogger

	mu    sync.Mutex
	token string
	user  *domain.UserRecord

	subMu sync.Mutex
	subs  []func(State)
}

func NewManager(store keystore.Store, log *zap.SugaredLogger) *Manager {
	return &Manager{store: store, log: log}
}

// Load restores a persisted session. It reports whether a session was
// restored; it never fails the caller. A token entry without a
// readable, valid user entry is treated as corrupt: both entries are
// erased and no session is exposed.
func (m *Manager) Load(ctx context.Context) bool {
	tokenBytes, err := m.store.Get(ctx, keystore.EntryToken)
	if err != nil {
		m.log.Warnw("session load: token unreadable, discarding", "error", err)
		m.eraseEntries(ctx)
		return false
	}
	if len(tokenBytes) == 0 {
		return false
	}

	userBytes, err := m.store.Get(ctx, keystore.EntryUser)
	if err != nil || len(userBytes) == 0 {
		m.log.Warnw("session load: token present without user record, discarding both",
			"error", err)
		m.eraseEntries(ctx)
		return false
	}

	var user domain.UserRecord
	if err := json.Unmarshal(userBytes, &user); err != nil || user.ID == "" {
		m.log.Warnw("session load: user record corrupt, discarding session",
			"error", err)
		m.eraseEntries(ctx)
		return false
	}

	m.mu.Lock()
	m.token = string(tokenBytes)
	m.user = &user
	m.mu.Unlock()

	m.notify(StateEstablished)
	return true
}

// Establish replaces the session with a newly issued token and user
// record. Durable writes happen before the in-memory update; if either
// write fails the session is cleared entirely rather than left holding
// a token that would not survive a restart.
func (m *Manager) Establish(ctx context.Context, token string, user domain.UserRecord) error {
	userBytes, err := json.Marshal(user)
	if err != nil {
		m.Clear(ctx)
		return err
	}

	if err := m.store.Set(ctx, keystore.EntryToken, []byte(token)); err != nil {
		m.log.Errorw("session establish: token write failed", "error", err)
		m.Clear(ctx)
		return err
	}
	if err := m.store.Set(ctx, keystore.EntryUser, userBytes); err != nil {
		m.log.Errorw("session establish: user write failed", "error", err)
		m.Clear(ctx)
		return err
	}

	m.mu.Lock()
	m.token = token
	m.user = &user
	m.mu.Unlock()

	m.notify(StateEstablished)
	return nil
}

// UpdateUser replaces only the cached user record, e.g. after a role
// change. It is a logged no-op when no session is established, so a
// stale response can never attach identity to an anonymous client.
func (m *Manager) UpdateUser(ctx context.Context, user domain.UserRecord) error {
	m.mu.Lock()
	hasToken := m.token != ""
	m.mu.Unlock()

	if !hasToken {
		m.log.Warnw("session update: ignoring user update without a session",
			"userID", user.ID)
		return nil
	}

	userBytes, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, keystore.EntryUser, userBytes); err != nil {
		m.log.Errorw("session update: user write failed", "error", err)
		return err
	}

	m.mu.Lock()
	if m.token != "" {
		m.user = &user
	}
	m.mu.Unlock()
	return nil
}

// Clear drops the session unconditionally. Durable deletion is
// best-effort; in-memory state is always cleared and the caller never
// sees an error. Subscribers are notified once per actual
// established-to-cleared transition, so concurrent 401s collapse into
// a single logout signal.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	wasEstablished := m.token != ""
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	m.eraseEntries(ctx)

	if wasEstablished {
		m.notify(StateCleared)
	}
}

func (m *Manager) eraseEntries(ctx context.Context) {
	if err := m.store.Delete(ctx, keystore.EntryToken); err != nil {
		m.log.Warnw("session: token erase failed", "error", err)
	}
	if err := m.store.Delete(ctx, keystore.EntryUser); err != nil {
		m.log.Warnw("session: user erase failed", "error", err)
	}
}

// Token returns the current bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// User returns a copy of the current user record, or nil.
func (m *Manager) User() *domain.UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// TokenExpiry inspects the bearer token's exp claim without verifying
// the signature. The zero time means the token is opaque or carries no
// expiry; it is informational only, never an auth decision.
func (m *Manager) TokenExpiry() time.Time {
	token := m.Token()
	if token == "" {
		return time.Time{}
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Subscribe registers fn to run on every session state transition.
// Callbacks run synchronously, outside the state lock.
func (m *Manager) Subscribe(fn func(State)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) notify(state State) {
	m.subMu.Lock()
	subs := make([]func(State), len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
