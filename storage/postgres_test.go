package storage

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"talentapi/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func mustPort(t *testing.T, s string) int {
	t.Helper()
	p, err := strconv.Atoi(s)
	require.NoError(t, err)
	return p
}

// closedPort returns a local port with nothing listening on it
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestNewPostgres_IsLazy(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Host = "127.0.0.1"
	cfg.DB.Port = closedPort(t)
	cfg.DB.User = "postgres"
	cfg.DB.Password = "postgres"
	cfg.DB.Name = "postgres"
	cfg.DB.SSLMode = "disable"

	pg, err := NewPostgres(cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err, "opening the pool must not dial")
	defer pg.Close()

	assert.Equal(t, "postgres", pg.Name())
	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.DB.Port)), pg.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, pg.Ping(ctx))
}
