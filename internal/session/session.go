// Package session holds per-user analysis state. Each session caches the last
// successfully fetched bundle; sessions never share state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"StockScope/internal/model"
)

// Session is one user's view of the pipeline.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	lastSeen time.Time
	bundle   *model.StockBundle
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
	}
}

// Bundle returns the cached bundle, or nil when nothing has been fetched yet.
func (s *Session) Bundle() *model.StockBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

// Replace swaps the cached bundle. Only call it with a complete, successful fetch.
func (s *Session) Replace(b *model.StockBundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = b
}

// LastSeen reports the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}
