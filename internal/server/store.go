package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/spigell/interview-coach/internal/session"
)

// entry serializes every step taken on one session.
type entry struct {
	mu       sync.Mutex
	session  *session.Session
	lastUsed atomic.Int64
}

type store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

func newStore() *store {
	return &store{sessions: map[string]*entry{}, now: time.Now}
}

func (s *store) add(sess *session.Session) {
	e := &entry{session: sess}
	e.lastUsed.Store(s.now().UnixNano())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = e
}

func (s *store) get(id string) (*entry, bool) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		e.lastUsed.Store(s.now().UnixNano())
	}
	return e, ok
}

func (s *store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// evictIdle drops sessions untouched for longer than ttl. Sessions with a
// request in flight are left alone.
func (s *store) evictIdle(ttl time.Duration) []string {
	cutoff := s.now().Add(-ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, e := range s.sessions {
		if e.lastUsed.Load() >= cutoff || !e.mu.TryLock() {
			continue
		}
		_ = e.session.Terminate()
		e.mu.Unlock()
		delete(s.sessions, id)
		evicted = append(evicted, id)
	}
	return evicted
}
