package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextKeys_RoundTrip(t *testing.T) {
	start := time.Now()
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithTraceStart(ctx, start)

	id, ok := GetRequestID(ctx)
	require.True(t, ok)
	assert.Equal(t, "req-1", id)

	got, ok := GetTraceStart(ctx)
	require.True(t, ok)
	assert.True(t, start.Equal(got))
}

// String keys set by other packages must not shadow the typed keys
func TestContextKeys_CollisionPrevention(t *testing.T) {
	ctx := WithRequestID(context.Background(), "legit")
	//nolint:staticcheck // deliberately using a plain string key
	ctx = context.WithValue(ctx, "request_id", "spoofed")

	id, ok := GetRequestID(ctx)
	require.True(t, ok)
	assert.Equal(t, "legit", id)
}

func TestGetRequestIDOrDefault(t *testing.T) {
	assert.Equal(t, "unknown", GetRequestIDOrDefault(context.Background()))
	assert.Equal(t, "unknown", GetRequestIDOrDefault(WithRequestID(context.Background(), "")))
	assert.Equal(t, "abc", GetRequestIDOrDefault(WithRequestID(context.Background(), "abc")))

	_, ok := GetTraceStart(context.Background())
	assert.False(t, ok)
}
