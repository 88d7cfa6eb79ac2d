package redis

import (
	"context"
	"fmt"
	"time"

	"queued-ledger/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Every ledger operation may hit Redis while the engine lock is held, so
// calls fail fast instead of stalling the whole ledger.
const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

func options(cfg config.RedisConfig) *goredis.Options {
	return &goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	}
}

// NewClient connects to Redis and pings it once before returning.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(options(cfg))

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Dur("io_timeout", ioTimeout).
		Msg("Redis ready for rate limits and idempotency keys")

	return client, nil
}
