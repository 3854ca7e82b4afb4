package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	release, err := l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "sweep", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	_, err = l.Acquire(ctx, "other", time.Minute)
	assert.NoError(t, err, "keys are independent")

	require.NoError(t, release(ctx))
	release2, err := l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	// A stale release from the first holder must not drop the new lease.
	require.NoError(t, release(ctx))
	_, err = l.Acquire(ctx, "sweep", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	now = now.Add(2 * time.Minute)
	_, err = l.Acquire(ctx, "sweep", time.Minute)
	assert.NoError(t, err, "expired lease can be taken over")
	assert.NoError(t, release2(ctx))
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, "tournament_scheduler:"), mr
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLocker(t)

	release, err := l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("tournament_scheduler:sweep"))

	_, err = l.Acquire(ctx, "sweep", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("tournament_scheduler:sweep"))
}

func TestRedisLocker_ExpiredLeaseIsNotReleasedByOldOwner(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLocker(t)

	release, err := l.Acquire(ctx, "sweep", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	assert.True(t, mr.Exists("tournament_scheduler:sweep"), "new owner keeps the lease")
}

func TestRedisLocker_ConnectionError(t *testing.T) {
	l, mr := newRedisLocker(t)
	mr.Close()

	_, err := l.Acquire(context.Background(), "sweep", time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAcquired)
}
