package history

import (
	"sync"
	"time"

	"skyshield/internal/model"
)

// Store keeps a bounded ring of recent assessments for the API. Oldest
// entries fall off first.
type Store struct {
	mu    sync.RWMutex
	buf   []model.Assessment
	limit int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 500
	}
	return &Store{limit: limit}
}

func (s *Store) Add(a model.Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) < s.limit {
		s.buf = append(s.buf, a)
		return
	}
	copy(s.buf, s.buf[1:])
	s.buf[len(s.buf)-1] = a
}

func (s *Store) List(limit int) []model.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.buf) {
		limit = len(s.buf)
	}
	out := make([]model.Assessment, 0, limit)
	start := len(s.buf) - limit
	for i := start; i < len(s.buf); i++ {
		out = append(out, s.buf[i])
	}
	return out
}

func (s *Store) Since(ts time.Time) []model.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Assessment, 0)
	for _, a := range s.buf {
		if !a.Timestamp.Before(ts) {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
}
