package storage

import (
	"context"
	"testing"
	"time"

	"talentapi/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func redisConfig(t *testing.T, mr *miniredis.Miniredis) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mustPort(t, mr.Port())
	return cfg
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := zaptest.NewLogger(t).Sugar()

	r := NewRedis(redisConfig(t, mr), logger)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Equal(t, "redis", r.Name())
	assert.Equal(t, mr.Addr(), r.Addr())
	assert.NoError(t, r.Ping(ctx))
}

func TestRedis_PingWithPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")
	logger := zaptest.NewLogger(t).Sugar()

	cfg := redisConfig(t, mr)
	cfg.Redis.Password = "wrong"
	bad := NewRedis(cfg, logger)
	defer bad.Close()
	assert.Error(t, bad.Ping(context.Background()))

	cfg.Redis.Password = "s3cret"
	good := NewRedis(cfg, logger)
	defer good.Close()
	assert.NoError(t, good.Ping(context.Background()))
}

func TestRedis_PingAfterServerStops(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t).Sugar()

	r := NewRedis(redisConfig(t, mr), logger)
	defer r.Close()
	require.NoError(t, r.Ping(context.Background()))

	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, r.Ping(ctx))
}
