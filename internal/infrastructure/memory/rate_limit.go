// Package memory holds the in-process fallback for the rate limiter. It is
// the only shared mutable in-process state in the service and trades
// cross-process accuracy for availability while the shared backend is down.
package memory

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// RateLimitStore is a mutex-guarded fixed-window counter. Windows reset on
// wall-clock deadlines, not a sliding horizon, which permits up to twice the
// limit across a boundary; that is the documented contract.
type RateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{windows: make(map[string]*window)}
}

// Hit records one request under key and returns the count in the current
// window, including this request. The first request of a window resets the
// counter and arms a new deadline.
func (s *RateLimitStore) Hit(_ context.Context, key string, windowDur time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		s.windows[key] = &window{count: 1, resetAt: now.Add(windowDur)}
		return 1, nil
	}

	w.count++
	return w.count, nil
}
