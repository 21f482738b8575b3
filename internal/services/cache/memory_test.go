package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/interfaces"
)

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func TestMemoryCache_PutGet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemoryCache(6*time.Hour, clock, createTestLogger())
	ctx := context.Background()

	_, err := c.Get(ctx, "hello")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	require.NoError(t, c.Put(ctx, "hello", 0.42))

	entry, err := c.Get(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 0.42, entry.FinalScore)
	assert.Equal(t, clock.Now(), entry.CreatedAt)
}

func TestMemoryCache_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemoryCache(6*time.Hour, clock, createTestLogger())
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", 0.5))

	clock.Advance(6*time.Hour - time.Second)
	_, err := c.Get(ctx, "k")
	assert.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss, "an entry exactly ttl old is stale")
}

func TestMemoryCache_LastWriteWins(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemoryCache(time.Hour, clock, createTestLogger())
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", 0.1))
	clock.Advance(30 * time.Minute)
	require.NoError(t, c.Put(ctx, "k", 0.2))
	clock.Advance(45 * time.Minute)

	entry, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 0.2, entry.FinalScore)
}

func TestMemoryCache_Evict(t *testing.T) {
	c := NewMemoryCache(time.Hour, clockwork.NewFakeClock(), createTestLogger())
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", 0.1))
	require.NoError(t, c.Evict(ctx, "k"))
	require.NoError(t, c.Evict(ctx, "absent"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemoryCache(time.Hour, clock, createTestLogger())
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "old", 0.1))
	clock.Advance(50 * time.Minute)
	require.NoError(t, c.Put(ctx, "new", 0.2))
	clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, c.EvictExpired())
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_Sweeper(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemoryCache(time.Hour, clock, createTestLogger())
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a", 0.1))
	require.NoError(t, c.Put(ctx, "b", 0.2))

	stop := c.StartSweeper(10 * time.Minute)
	defer stop()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(2 * time.Hour)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)

	stop()
	stop()
}
