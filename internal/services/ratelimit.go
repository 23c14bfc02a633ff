package services

import (
	"sync"
	"time"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"

	"golang.org/x/time/rate"
)

const limiterIdleEviction = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client key and evicts
// buckets that have been idle long enough to be full again anyway.
type ipRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	limit rate.Limit
	burst int
}

func NewRateLimiter() middlewares.RateLimiter {
	return &ipRateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(config.C.RateLimit.PerMinute) / 60.0),
		burst:   config.C.RateLimit.Burst,
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.evictStale(now)

	client, ok := l.clients[key]
	if !ok {
		client = &clientLimiter{
			limiter: rate.NewLimiter(l.limit, l.burst),
		}
		l.clients[key] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}

func (l *ipRateLimiter) evictStale(now time.Time) {
	for key, client := range l.clients {
		if now.Sub(client.lastSeen) > limiterIdleEviction {
			delete(l.clients, key)
		}
	}
}
