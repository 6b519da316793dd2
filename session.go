package mcp

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id does not resolve to a live
// session. Expired and never-issued ids are deliberately indistinguishable to
// the caller.
var ErrSessionNotFound = errors.New("session not found")

var (
	defaultSessionTTL    = 24 * time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// Session is a server-side record of a continued interaction, addressed by an
// opaque id. Its TTL measures idle time: every authenticated request refreshes
// LastActivityAt, so only abandoned sessions expire.
type Session struct {
	ID             string
	CreatedAt      time.Time
	LastActivityAt time.Time
	TTL            time.Duration
	Capabilities   ClientCapabilities
	ClientInfo     Info
}

// SessionManager owns the session map. It hands out uuid-based ids (collision
// probability negligible by construction), refreshes activity on Touch, and
// removes idle sessions both lazily on read and via a periodic sweep.
// Close must be called to stop the sweep goroutine.
type SessionManager struct {
	ttl           time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time

	done   chan struct{}
	closed sync.Once
}

// SessionManagerOption represents the options for the SessionManager.
type SessionManagerOption func(*SessionManager)

// WithSessionTTL sets the idle timeout after which sessions expire.
func WithSessionTTL(ttl time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		m.ttl = ttl
	}
}

// WithSweepInterval sets how often the background sweep removes idle sessions.
func WithSweepInterval(interval time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		m.sweepInterval = interval
	}
}

// WithSessionLogger sets the logger for the session manager.
func WithSessionLogger(logger *slog.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		m.logger = logger.With(slog.String("component", "sessions"))
	}
}

// NewSessionManager creates a session manager and starts its sweep goroutine.
func NewSessionManager(options ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.ttl == 0 {
		m.ttl = defaultSessionTTL
	}
	if m.sweepInterval == 0 {
		m.sweepInterval = defaultSweepInterval
	}

	go m.sweep()

	return m
}

// Create registers a new session with a fresh unique id.
func (m *SessionManager) Create(capabilities ClientCapabilities, clientInfo Info) Session {
	now := m.now()
	sess := &Session{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		LastActivityAt: now,
		TTL:            m.ttl,
		Capabilities:   capabilities,
		ClientInfo:     clientInfo,
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.Debug("session created", slog.String("sessionID", sess.ID))

	return *sess
}

// Get returns the session for id without refreshing its TTL. An expired
// session is removed and reported as absent.
func (m *SessionManager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	if m.expired(sess) {
		delete(m.sessions, id)
		return Session{}, false
	}
	return *sess, true
}

// Touch refreshes the session's activity timestamp and returns the updated
// session. The dispatcher calls this on every authenticated request, making
// the TTL an idle timeout rather than an absolute lifetime.
func (m *SessionManager) Touch(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if m.expired(sess) {
		delete(m.sessions, id)
		return Session{}, ErrSessionNotFound
	}

	sess.LastActivityAt = m.now()
	return *sess, nil
}

// Expire terminates the session immediately. Expiring an unknown id is a no-op.
func (m *SessionManager) Expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.logger.Debug("session expired", slog.String("sessionID", id))
	}
}

// Len returns the number of live sessions, counting out any that have idled
// past their TTL but not yet been swept.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, sess := range m.sessions {
		if !m.expired(sess) {
			n++
		}
	}
	return n
}

// Close stops the sweep goroutine. It does not terminate live sessions.
func (m *SessionManager) Close() {
	m.closed.Do(func() {
		close(m.done)
	})
}

func (m *SessionManager) expired(sess *Session) bool {
	return m.now().Sub(sess.LastActivityAt) > sess.TTL
}

func (m *SessionManager) sweep() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *SessionManager) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sess := range m.sessions {
		if m.expired(sess) {
			delete(m.sessions, id)
			m.logger.Debug("idle session swept", slog.String("sessionID", id))
		}
	}
}
