package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/trustrank/internal/kvstore"
)

func newTestLimiter(t *testing.T, limit int, bypass []string) (*Limiter, kvstore.Store) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return NewLimiter(store, limit, 3600, bypass, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 5, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(ctx, "203.0.113.7"), "request %d", i+1)
	}
	assert.False(t, limiter.Allow(ctx, "203.0.113.7"))
}

func TestLimiter_ExhaustionStopsCounting(t *testing.T) {
	limiter, store := newTestLimiter(t, 3, nil)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		limiter.Allow(ctx, "203.0.113.7")
	}

	raw, err := store.Get(ctx, counterKey("203.0.113.7"))
	require.NoError(t, err)
	count, err := strconv.ParseInt(string(raw), 10, 64)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2, nil)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
	assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
	assert.False(t, limiter.Allow(ctx, "10.0.0.1"))

	assert.True(t, limiter.Allow(ctx, "10.0.0.2"))
}

func TestLimiter_Bypass(t *testing.T) {
	limiter, store := newTestLimiter(t, 1, []string{"192.0.2.1"})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow(ctx, "192.0.2.1"))
	}

	_, err := store.Get(ctx, counterKey("192.0.2.1"))
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}
