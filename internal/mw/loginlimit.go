package mw

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// LoginLimiter is a sliding-window attempt counter keyed by client
// identifier. It is an injected component rather than package state so
// a multi-instance deployment can swap it for a shared store.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts *cache.Cache
	max      int
	window   time.Duration
}

// NewLoginLimiter allows max attempts per key within window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		// Idle keys expire with the window; the janitor drops them.
		attempts: cache.New(window, 2*window),
		max:      max,
		window:   window,
	}
}

// Allow records an attempt for key and reports whether it is within
// the limit. Attempts older than the window no longer count.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	var recent []time.Time
	if v, ok := l.attempts.Get(key); ok {
		for _, t := range v.([]time.Time) {
			if now.Sub(t) < l.window {
				recent = append(recent, t)
			}
		}
	}

	if len(recent) >= l.max {
		l.attempts.Set(key, recent, cache.DefaultExpiration)
		return false
	}

	recent = append(recent, now)
	l.attempts.Set(key, recent, cache.DefaultExpiration)
	return true
}
