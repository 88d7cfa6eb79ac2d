package redis

import (
	"context"
	"strconv"
	"testing"

	"queued-ledger/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisAddr(t *testing.T) {
	cfg := config.RedisConfig{
		Host: "redis.example.com",
		Port: 6380,
	}

	assert.Equal(t, "redis.example.com:6380", cfg.Addr())
}

func TestOptions_FailFastTimeouts(t *testing.T) {
	opts := options(config.RedisConfig{Host: "cache", Port: 6379, Password: "pw", DB: 2})

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, ioTimeout, opts.ReadTimeout)
	assert.Equal(t, ioTimeout, opts.WriteTimeout)
	assert.Equal(t, dialTimeout, opts.DialTimeout)
}

func miniredisConfig(t *testing.T, s *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)
	return config.RedisConfig{Enabled: true, Host: s.Host(), Port: port}
}

func TestNewClient_PingsServer(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), miniredisConfig(t, s), zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	hc := NewHealthCheck(client)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := miniredisConfig(t, s)
	s.Close()

	_, err := NewClient(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, cfg.Addr())
}

func TestHealthCheck_ReportsOutage(t *testing.T) {
	s := miniredis.RunT(t)
	client, err := NewClient(context.Background(), miniredisConfig(t, s), zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	hc := NewHealthCheck(client)
	require.NoError(t, hc.Ping(context.Background()))

	s.SetError("LOADING dataset in memory")
	assert.ErrorContains(t, hc.Ping(context.Background()), "redis ping")
}
