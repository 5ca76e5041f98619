// Package session provides server-side cookie sessions with a fixed
// inactivity window.
package session

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultCookieName carries the session token.
	DefaultCookieName = "LOGINWATCH_SESSION"
	// DefaultInactivityWindow is the fixed inactivity expiry (1800 s).
	DefaultInactivityWindow = 30 * time.Minute

	// UserAttribute holds the session-scoped login-name marker for other
	// request handlers.
	UserAttribute = "user"
	// AuthErrorAttribute holds the last authentication error left by a
	// failed attempt; cleared on the next success.
	AuthErrorAttribute = "authError"
)

// Session is one authenticated browser session. Attribute access goes
// through the manager's lock.
type Session struct {
	Token          string
	CreatedAt      time.Time
	LastAccessedAt time.Time
	attributes     map[string]any
}

// Manager owns the session store. Sessions expire after the inactivity
// window elapses without a Touch; expired sessions are dropped lazily on
// lookup.
type Manager struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	cookieName string
	inactivity time.Duration
	now        func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithInactivityWindow overrides the inactivity expiry window.
func WithInactivityWindow(window time.Duration) ManagerOption {
	return func(m *Manager) {
		m.inactivity = window
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		m.cookieName = name
	}
}

// withClock overrides the clock. Tests only.
func withClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager with the default 30-minute
// inactivity window.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:   make(map[string]*Session),
		cookieName: DefaultCookieName,
		inactivity: DefaultInactivityWindow,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Establish returns the request's live session, refreshing its inactivity
// window, or creates a new one and sets the session cookie. The cookie must
// be set before the response body is written.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request) *Session {
	if sess, ok := m.Lookup(r); ok {
		return sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	sess := &Session{
		Token:          uuid.NewString(),
		CreatedAt:      now,
		LastAccessedAt: now,
		attributes:     make(map[string]any),
	}
	m.sessions[sess.Token] = sess

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Debug("Session established", "token", sess.Token)
	return sess
}

// Lookup returns the request's session if it exists and has not exceeded
// its inactivity window. A live session is touched; an expired one is
// removed.
func (m *Manager) Lookup(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[cookie.Value]
	if !ok {
		return nil, false
	}

	now := m.now()
	if now.Sub(sess.LastAccessedAt) > m.inactivity {
		delete(m.sessions, sess.Token)
		slog.Debug("Session expired", "token", sess.Token)
		return nil, false
	}

	sess.LastAccessedAt = now
	return sess, true
}

// SetAttribute stores a session-scoped value.
func (m *Manager) SetAttribute(sess *Session, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess.attributes[key] = value
}

// GetAttribute returns a session-scoped value.
func (m *Manager) GetAttribute(sess *Session, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := sess.attributes[key]
	return value, ok
}

// RemoveAttribute drops a session-scoped value.
func (m *Manager) RemoveAttribute(sess *Session, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(sess.attributes, key)
}

// InactivityWindow returns the configured inactivity expiry window.
func (m *Manager) InactivityWindow() time.Duration {
	return m.inactivity
}
