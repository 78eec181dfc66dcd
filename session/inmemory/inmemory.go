package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/resolvelab/coach/models"
	"github.com/resolvelab/coach/session"
)

type entry struct {
	iv        *models.Interview
	expiresAt time.Time
}

// Store is an in-process session store with idle expiry. Suitable for a
// single-instance deployment; use the redis store when running more than one.
type Store struct {
	sessions map[string]*entry
	ttl      time.Duration
	mu       sync.RWMutex
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{sessions: make(map[string]*entry), ttl: ttl}
}

func (s *Store) Save(_ context.Context, iv *models.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[iv.ThreadID] = &entry{iv: iv, expiresAt: time.Now().Add(s.ttl)}
	s.sweep()
	return nil
}

func (s *Store) Get(_ context.Context, threadID string) (*models.Interview, error) {
	s.mu.RLock()
	e, ok := s.sessions[threadID]
	s.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, session.ErrNotFound
	}
	// refresh the idle timer on access
	s.mu.Lock()
	e.expiresAt = time.Now().Add(s.ttl)
	s.mu.Unlock()
	return e.iv, nil
}

// sweep drops expired entries. Called under the write lock.
func (s *Store) sweep() {
	now := time.Now()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
