package auth

import (
	"sync"
	"time"
)

// LoginLimiter is a sliding-window log of login attempts per identifier.
// Attempts refused by the limiter itself are not recorded.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewLoginLimiter allows limit attempts per identifier within window.
func NewLoginLimiter(limit int, window time.Duration, now func() time.Time) *LoginLimiter {
	if now == nil {
		now = time.Now
	}
	return &LoginLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      now,
	}
}

// Attempt records an attempt for id unless the window is already full.
// When refused, it returns how long until the oldest attempt leaves the window.
func (l *LoginLimiter) Attempt(id string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(id, now)

	if len(recent) >= l.limit {
		retryAfter := l.window - now.Sub(recent[0])
		return false, max(retryAfter, 0)
	}

	l.attempts[id] = append(recent, now)
	return true, 0
}

// prune drops attempts that have left the window. Attempts are kept in order,
// so the first survivor is the oldest.
func (l *LoginLimiter) prune(id string, now time.Time) []time.Time {
	attempts := l.attempts[id]
	i := 0
	for i < len(attempts) && now.Sub(attempts[i]) >= l.window {
		i++
	}
	recent := attempts[i:]
	if len(recent) == 0 {
		delete(l.attempts, id)
		return nil
	}
	l.attempts[id] = recent
	return recent
}
