// Package ratelimit provides per-client token-bucket limiters backed either
// by process memory or by Redis, so several API instances can share one
// budget per client.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// client holds a per-key rate limiter and the time it was last seen.
// lastSeen lets us evict old entries so the map does not grow forever.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Local is an in-process limiter keyed by client. Each key gets its own
// token bucket refilled at rps tokens per second with the given burst.
type Local struct {
	rps   float64
	burst int
	ttl   time.Duration

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

// NewLocal creates a Local limiter. Entries idle longer than ttl are dropped
// by Sweep.
func NewLocal(rps float64, burst int, ttl time.Duration) *Local {
	return &Local{
		rps:     rps,
		burst:   burst,
		ttl:     ttl,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.clients[key]
	if !found {
		c = &client{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = l.now()

	// AllowN consumes one token; returns false if the bucket is empty.
	return c.limiter.AllowN(c.lastSeen, 1), nil
}

// Sweep removes entries not seen within the ttl and reports how many were
// removed.
func (l *Local) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, c := range l.clients {
		if l.now().Sub(c.lastSeen) > l.ttl {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Run sweeps stale entries every interval until ctx is cancelled.
func (l *Local) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
