// Package session implements the server-side session boundary: opaque
// random tokens mapped to per-browser state (authenticated identity
// plus pending flash notices) held in process memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the opaque session token.
const CookieName = "tareas_session"

// Flash severities understood by the rendering layer.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice displayed on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// Session is a point-in-time copy of one session's state. Mutations go
// through the Manager.
type Session struct {
	Token     string
	AccountID int
	Username  string
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool { return s.AccountID != 0 }

type state struct {
	accountID int
	username  string
	flashes   []Flash
	expires   time.Time
}

// Manager owns all live sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*state
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]*state),
		now:      time.Now,
	}
}

// Start creates a fresh anonymous session. Sessions exist before login
// so that flashes survive the register -> login redirect.
func (m *Manager) Start() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := uuid.NewString()
	m.sessions[token] = &state{expires: m.now().Add(m.ttl)}
	return Session{Token: token}
}

// Lookup resolves a token. Expired sessions are dropped on access.
func (m *Manager) Lookup(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if m.now().After(st.expires) {
		delete(m.sessions, token)
		return Session{}, false
	}
	return Session{Token: token, AccountID: st.accountID, Username: st.username}, true
}

// SetIdentity binds an account to the session and rotates the token so
// a pre-login token cannot be replayed after authentication. Pending
// flashes move to the new token. The new token is returned.
func (m *Manager) SetIdentity(token string, accountID int, username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var flashes []Flash
	if st, ok := m.sessions[token]; ok {
		flashes = st.flashes
		delete(m.sessions, token)
	}

	fresh := uuid.NewString()
	m.sessions[fresh] = &state{
		accountID: accountID,
		username:  username,
		flashes:   flashes,
		expires:   m.now().Add(m.ttl),
	}
	return fresh
}

// Clear removes the session entirely. Unknown tokens are a no-op, so
// logout is idempotent.
func (m *Manager) Clear(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// AddFlash queues a notice on the session.
func (m *Manager) AddFlash(token, level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[token]
	if !ok {
		return
	}
	st.flashes = append(st.flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns and clears the pending notices.
func (m *Manager) PopFlashes(token string) []Flash {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[token]
	if !ok || len(st.flashes) == 0 {
		return nil
	}
	flashes := st.flashes
	st.flashes = nil
	return flashes
}

// Purge drops every expired session. Called opportunistically; Lookup
// also expires lazily.
func (m *Manager) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for token, st := range m.sessions {
		if now.After(st.expires) {
			delete(m.sessions, token)
		}
	}
}
