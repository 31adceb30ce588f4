// Package ratelimit provides per-client request limiting with a fixed
// window. The limiter is an injected collaborator rather than a global
// so the in-memory implementation can be swapped for the Redis-backed
// one when the service runs as more than one process.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// AnonymousIdentifier is the shared bucket for clients with no
// resolvable network origin. All such clients count against one window.
const AnonymousIdentifier = "anonymous"

// sweepThreshold is the table size above which expired records are
// opportunistically evicted during Allow.
const sweepThreshold = 1000

// Limiter reports whether a client identified by the given key may make
// another request right now.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

type record struct {
	count     int
	resetTime time.Time
}

// MemoryLimiter is a process-local fixed-window limiter. Safe for
// concurrent use.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	records map[string]*record
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		records: make(map[string]*record),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, identifier string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if len(l.records) > sweepThreshold {
		for key, rec := range l.records {
			if rec.resetTime.Before(now) {
				delete(l.records, key)
			}
		}
	}

	rec, ok := l.records[identifier]
	if !ok || !rec.resetTime.After(now) {
		l.records[identifier] = &record{count: 1, resetTime: now.Add(l.window)}
		return true, nil
	}

	if rec.count >= l.limit {
		return false, nil
	}

	rec.count++
	return true, nil
}

// size reports the current number of tracked identifiers.
func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
