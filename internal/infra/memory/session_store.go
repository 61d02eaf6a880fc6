package memory

import (
	"context"
	"sync"
	"time"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// It stores copies so callers never share a *Session. Each Save restarts the
// session's TTL; expired sessions read as missing and are pruned on write.
type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	clock    func() time.Time
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	session   *app.Session
	expiresAt time.Time
}

// NewSessionStore keeps sessions for ttl after their last save; ttl <= 0
// keeps them until deleted.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock is test-only for deterministic expiry.
func NewSessionStoreWithClock(ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]sessionEntry),
	}
}

func (s *SessionStore) Save(_ context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.prune(now)
	entry := sessionEntry{session: session.Clone()}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.sessions[session.ID] = entry
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*app.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok || entry.expired(s.clock()) {
		return nil, domain.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held, expired ones included until pruned.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) prune(now time.Time) {
	for id, entry := range s.sessions {
		if entry.expired(now) {
			delete(s.sessions, id)
		}
	}
}

func (e sessionEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}
