package signaling

import (
	"sync"
	"time"

	"github.com/studycrew/presence/internal/domain"
)

// RateLimiter caps how many signals one user may send per sliding
// window. A misbehaving client renegotiating in a loop floods every
// participant under mesh broadcast, so the cap is per sender.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID][]time.Time
	limit    int
	interval time.Duration

	now func() time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		history:  make(map[domain.UserID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records an attempt and reports whether it is within the
// limit. Attempts older than the window are discarded as a side
// effect, so memory stays bounded by active senders.
func (rl *RateLimiter) Allow(userID domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[userID]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[userID] = fresh
		return false
	}

	rl.history[userID] = append(fresh, now)
	return true
}

// Forget drops a user's attempt history, called when their session
// terminates.
func (rl *RateLimiter) Forget(userID domain.UserID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, userID)
}
