package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-lock retries when another client touches
// the same window concurrently.
const maxTxRetries = 3

// RateLimitStore implements ports.RateLimiter as a sliding window backed by
// one sorted set per account. Scores are event times in unix milliseconds;
// members are random so equal timestamps never collapse.
type RateLimitStore struct {
	client *goredis.Client
	prefix string
	window time.Duration
	now    func() time.Time
}

// NewRateLimitStore creates a new Redis-backed sliding window limiter.
func NewRateLimitStore(client *goredis.Client, window time.Duration) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:account:",
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *RateLimitStore) WithClock(now func() time.Time) *RateLimitStore {
	s.now = now
	return s
}

func (s *RateLimitStore) key(accountID int64) string {
	return s.prefix + strconv.FormatInt(accountID, 10)
}

// cutoff is the newest score that already falls outside the window.
func (s *RateLimitStore) cutoff(now time.Time) string {
	return strconv.FormatInt(now.Add(-s.window).UnixMilli(), 10)
}

// TryRecord counts live events under WATCH and, if below limit, purges stale
// entries and adds the new one in a single MULTI/EXEC.
func (s *RateLimitStore) TryRecord(ctx context.Context, accountID int64, limit int) (bool, error) {
	key := s.key(accountID)

	for i := 0; i < maxTxRetries; i++ {
		now := s.now()
		cutoff := s.cutoff(now)
		allowed := false

		err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
			count, err := tx.ZCount(ctx, key, "("+cutoff, "+inf").Result()
			if err != nil {
				return err
			}
			if count >= int64(limit) {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
				pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
				pipe.PExpire(ctx, key, s.window)
				return nil
			})
			if err == nil {
				allowed = true
			}
			return err
		}, key)

		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("redis rate limit record: %w", err)
		}
		return allowed, nil
	}
	return false, fmt.Errorf("redis rate limit record: %w", goredis.TxFailedErr)
}

// Count returns the events inside the window.
func (s *RateLimitStore) Count(ctx context.Context, accountID int64) (int, error) {
	count, err := s.client.ZCount(ctx, s.key(accountID), "("+s.cutoff(s.now()), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis rate limit count: %w", err)
	}
	return int(count), nil
}

// Reset drops the window for accountID.
func (s *RateLimitStore) Reset(ctx context.Context, accountID int64) error {
	if err := s.client.Del(ctx, s.key(accountID)).Err(); err != nil {
		return fmt.Errorf("redis rate limit reset: %w", err)
	}
	return nil
}
