package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultLoginRate is the sustained number of login attempts allowed per
	// source address per second.
	DefaultLoginRate = 0.5

	// DefaultLoginBurst is the burst of login attempts allowed per source address.
	DefaultLoginBurst = 5

	// visitorIdleTimeout is how long an idle source keeps its limiter before
	// the entry is dropped.
	visitorIdleTimeout = 10 * time.Minute
)

// LoginLimiter throttles login attempts per source address.
// Idle entries are dropped opportunistically whenever the map is touched,
// so an attacker rotating addresses cannot grow it without bound faster
// than it shrinks.
type LoginLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter creates a limiter with the given sustained rate and burst.
// Non-positive arguments fall back to the defaults.
func NewLoginLimiter(limit float64, burst int) *LoginLimiter {
	if limit <= 0 {
		limit = DefaultLoginRate
	}
	if burst <= 0 {
		burst = DefaultLoginBurst
	}

	return &LoginLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(limit),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether a login attempt from the given source address may proceed.
func (l *LoginLimiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.dropIdleLocked(now)

	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = now

	return v.limiter.Allow()
}

// dropIdleLocked removes entries not seen within the idle timeout.
// Caller must hold the mutex.
func (l *LoginLimiter) dropIdleLocked(now time.Time) {
	for addr, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(l.visitors, addr)
		}
	}
}
