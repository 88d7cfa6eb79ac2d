package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock shared by limiter and engine tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestDailyRateLimiter_RejectsAtLimit(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := NewDailyRateLimiter(24*time.Hour, clock.Now)

	for i := 0; i < 3; i++ {
		ok, err := l.TryRecord(ctx, 1001, 3)
		require.NoError(t, err)
		require.True(t, ok, "attempt %d", i+1)
	}

	ok, err := l.TryRecord(ctx, 1001, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := l.Count(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "a rejected attempt must not be recorded")
}

func TestDailyRateLimiter_WindowSlides(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := NewDailyRateLimiter(24*time.Hour, clock.Now)

	ok, _ := l.TryRecord(ctx, 1001, 2)
	require.True(t, ok)
	clock.Advance(12 * time.Hour)
	ok, _ = l.TryRecord(ctx, 1001, 2)
	require.True(t, ok)

	ok, _ = l.TryRecord(ctx, 1001, 2)
	assert.False(t, ok)

	// The first event is exactly one window old and no longer counts.
	clock.Advance(12 * time.Hour)
	count, _ := l.Count(ctx, 1001)
	assert.Equal(t, 1, count)

	ok, _ = l.TryRecord(ctx, 1001, 2)
	assert.True(t, ok)
}

func TestDailyRateLimiter_AccountsAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewDailyRateLimiter(24*time.Hour, nil)

	ok, _ := l.TryRecord(ctx, 1001, 1)
	require.True(t, ok)

	ok, _ = l.TryRecord(ctx, 1002, 1)
	assert.True(t, ok)
}

func TestDailyRateLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	l := NewDailyRateLimiter(24*time.Hour, nil)

	ok, _ := l.TryRecord(ctx, 1001, 1)
	require.True(t, ok)
	require.NoError(t, l.Reset(ctx, 1001))

	count, err := l.Count(ctx, 1001)
	require.NoError(t, err)
	assert.Zero(t, count)

	ok, _ = l.TryRecord(ctx, 1001, 1)
	assert.True(t, ok)
}
