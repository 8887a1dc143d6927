package store

import (
	"sync"
	"time"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
)

// VolatileStore is the in-process conversation tier for anonymous sessions.
// Entries expire a fixed TTL after their last write; the sweep runs
// opportunistically on every write path rather than on a timer, which only
// delays reclamation and never produces a stale read (reads check the
// deadline themselves).
type VolatileStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

type sessionEntry struct {
	turns     []domain.Turn
	lastWrite time.Time
}

// NewVolatileStore builds the store. now is injectable so tests can drive a
// deterministic clock; pass nil for the wall clock.
func NewVolatileStore(ttl time.Duration, now func() time.Time) *VolatileStore {
	if now == nil {
		now = time.Now
	}
	return &VolatileStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      now,
	}
}

// Load returns the session's turns, or nil when the session is unknown or
// has expired.
func (s *VolatileStore) Load(sessionID string) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || s.now().Sub(entry.lastWrite) > s.ttl {
		return nil
	}

	out := make([]domain.Turn, len(entry.turns))
	copy(out, entry.turns)
	return out
}

// Save replaces the session's turn list and refreshes its deadline.
func (s *VolatileStore) Save(sessionID string, turns []domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	stored := make([]domain.Turn, len(turns))
	copy(stored, turns)
	s.sessions[sessionID] = &sessionEntry{turns: stored, lastWrite: s.now()}
}

// Clear forgets the session.
func (s *VolatileStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	delete(s.sessions, sessionID)
}

// Len reports live (unexpired) sessions. Test helper.
func (s *VolatileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, entry := range s.sessions {
		if s.now().Sub(entry.lastWrite) <= s.ttl {
			n++
		}
	}
	return n
}

func (s *VolatileStore) sweepLocked() {
	now := s.now()
	for id, entry := range s.sessions {
		if now.Sub(entry.lastWrite) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
