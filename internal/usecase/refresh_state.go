package usecase

import (
	"sync"
	"time"
)

// RefreshState remembers when caches were last cleared. The zero value is
// ready to use and reports that no refresh has happened.
type RefreshState struct {
	mu      sync.RWMutex
	started time.Time
	last    time.Time
}

func NewRefreshState(started time.Time) *RefreshState {
	return &RefreshState{started: started}
}

// LastRefresh returns the last refresh time and false when there was none.
func (s *RefreshState) LastRefresh() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, !s.last.IsZero()
}

func (s *RefreshState) Mark(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = at
}

// Due reports whether interval has passed since the last refresh, or since
// the process started when nothing has been refreshed yet.
func (s *RefreshState) Due(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	since := s.last
	if since.IsZero() {
		since = s.started
	}
	return now.Sub(since) >= interval
}
