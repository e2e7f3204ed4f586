package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"standfinder/internal/model"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session IDs
var ErrSessionNotFound = errors.New("session not found")

// Session is one UI session and the store it exclusively owns
type Session struct {
	ID        string
	Store     *ListingStore
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch marks the session as used at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

// LastSeen returns the time of the most recent Touch
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionManager creates and tracks per-session listing stores over a
// shared, read-only base dataset
type SessionManager struct {
	base   []model.Stand
	opts   StoreOptions
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager. A ttl of zero disables
// idle eviction.
func NewSessionManager(base []model.Stand, opts StoreOptions, ttl time.Duration) *SessionManager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		base:     base,
		opts:     opts,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Base returns the shared dataset every session is built on
func (m *SessionManager) Base() []model.Stand {
	return m.base
}

// Locations yields the distinct suburbs of the shared dataset
func (m *SessionManager) Locations() iter.Seq[string] {
	return Locations(m.base)
}

// Cities yields the distinct cities of the shared dataset
func (m *SessionManager) Cities() iter.Seq[string] {
	return Cities(m.base)
}

// Create opens a new session with a fresh store
func (m *SessionManager) Create() (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := m.now()
	sess := &Session{
		ID:        id.String(),
		Store:     NewListingStore(m.base, m.opts),
		CreatedAt: now,
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.Debug("session created", "session_id", sess.ID)
	return sess, nil
}

// Get returns the session with the given id and marks it as used
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.Touch(m.now())
	return sess, nil
}

// Delete closes and forgets the session
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.Store.Close()
	m.logger.Debug("session deleted", "session_id", id)
	return nil
}

// Watch subscribes to the session's visible stands. Cancelling marks the
// session as used.
func (m *SessionManager) Watch(sess *Session) (<-chan []model.Stand, func()) {
	updates, cancel := sess.Store.Subscribe()
	return updates, func() {
		cancel()
		sess.Touch(m.now())
	}
}

// Len returns the number of open sessions
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the ttl and returns how many
// were evicted. Sessions with live subscribers are kept.
func (m *SessionManager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	var expired []*Session
	m.mu.Lock()
	for id, sess := range m.sessions {
		if sess.LastSeen().Before(cutoff) && sess.Store.Subscribers() == 0 {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.Store.Close()
		m.logger.Debug("session expired", "session_id", sess.ID)
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("evicted idle sessions", "count", n, "open", m.Len())
			}
		}
	}
}

// CloseAll closes every session
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Store.Close()
	}
}
