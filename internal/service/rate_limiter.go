package service

import (
	"context"
	"sync"
	"time"
)

// DailyRateLimiter is the in-memory ports.RateLimiter. Each account keeps the
// timestamps of its accepted events, oldest first; entries that fall out of
// the trailing window are purged on access.
type DailyRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	events map[int64][]time.Time
}

// NewDailyRateLimiter creates a limiter over the given window.
// A nil clock uses time.Now.
func NewDailyRateLimiter(window time.Duration, now func() time.Time) *DailyRateLimiter {
	if now == nil {
		now = time.Now
	}
	return &DailyRateLimiter{
		window: window,
		now:    now,
		events: make(map[int64][]time.Time),
	}
}

// TryRecord records one event for accountID unless limit is already reached.
func (l *DailyRateLimiter) TryRecord(_ context.Context, accountID int64, limit int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	events := l.purge(accountID, now)
	if len(events) >= limit {
		return false, nil
	}
	l.events[accountID] = append(events, now)
	return true, nil
}

// Count returns the events still inside the window.
func (l *DailyRateLimiter) Count(_ context.Context, accountID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.purge(accountID, l.now())), nil
}

// Reset forgets every event for accountID.
func (l *DailyRateLimiter) Reset(_ context.Context, accountID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.events, accountID)
	return nil
}

// purge drops entries with now-t >= window. Caller holds mu.
func (l *DailyRateLimiter) purge(accountID int64, now time.Time) []time.Time {
	events := l.events[accountID]
	i := 0
	for i < len(events) && now.Sub(events[i]) >= l.window {
		i++
	}
	if i == 0 {
		return events
	}
	events = events[i:]
	if len(events) == 0 {
		delete(l.events, accountID)
		return nil
	}
	l.events[accountID] = events
	return events
}
