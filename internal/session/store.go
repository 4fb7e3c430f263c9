package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Store tracks live sessions by ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewStore creates an empty store.
func NewStore(log logrus.FieldLogger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
		log:      log,
	}
}

// Create starts a new session.
func (st *Store) Create() *Session {
	s := newSession(st.now())

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.log.WithField("session", s.ID).Debug("session created")
	return s
}

// Get returns the session and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(st.now())
	return s, true
}

// Delete ends a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep discards sessions idle for longer than maxIdle and returns how many were removed.
func (st *Store) Sweep(maxIdle time.Duration) int {
	cutoff := st.now().Add(-maxIdle)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		st.log.WithFields(logrus.Fields{"removed": removed, "live": len(st.sessions)}).Info("swept idle sessions")
	}
	return removed
}
