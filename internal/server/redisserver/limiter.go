package redisserver

import (
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter holds one token bucket per client IP.
type clientLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     int
}

func newClientLimiter(commandsPerSecond int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     commandsPerSecond,
	}
}

// allow reports whether one more command from ip may run now.
func (l *clientLimiter) allow(ip string) bool {
	return l.get(ip).Allow()
}

func (l *clientLimiter) get(ip string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[ip]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, ok := l.limiters[ip]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(l.rate), l.rate)
	l.limiters[ip] = limiter
	return limiter
}

// forget drops the bucket of ip, e.g. once its last connection closed.
func (l *clientLimiter) forget(ip string) {
	l.mu.Lock()
	delete(l.limiters, ip)
	l.mu.Unlock()
}
