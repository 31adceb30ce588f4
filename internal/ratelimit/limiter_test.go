package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int, window time.Duration) (*MemoryLimiter, *time.Time) {
	l := NewMemoryLimiter(limit, window)
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestMemoryLimiter_AllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(20, time.Minute)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		allowed, err := l.Allow(ctx, "203.0.113.7")
		assert.NoError(t, err)
		assert.True(t, allowed, "call %d should be allowed", i+1)
	}

	allowed, err := l.Allow(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.False(t, allowed, "21st call in the window should be denied")
}

func TestMemoryLimiter_WindowReset(t *testing.T) {
	l, now := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow(ctx, "client-a")
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow(ctx, "client-a")
	assert.False(t, allowed)

	*now = now.Add(61 * time.Second)

	allowed, _ = l.Allow(ctx, "client-a")
	assert.True(t, allowed, "counter should reset after the window elapses")
}

func TestMemoryLimiter_IndependentIdentifiers(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, _ := l.Allow(ctx, "client-a")
	assert.True(t, allowed)
	allowed, _ = l.Allow(ctx, "client-a")
	assert.False(t, allowed)

	allowed, _ = l.Allow(ctx, "client-b")
	assert.True(t, allowed, "a different identifier gets its own window")
}

func TestMemoryLimiter_SweepsExpiredRecords(t *testing.T) {
	l, now := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	for i := 0; i <= sweepThreshold; i++ {
		_, err := l.Allow(ctx, fmt.Sprintf("client-%d", i))
		assert.NoError(t, err)
	}
	assert.Equal(t, sweepThreshold+1, l.size())

	*now = now.Add(2 * time.Minute)

	// Next call crosses the threshold and sweeps every expired record.
	_, err := l.Allow(ctx, "fresh-client")
	assert.NoError(t, err)
	assert.Equal(t, 1, l.size())
}
