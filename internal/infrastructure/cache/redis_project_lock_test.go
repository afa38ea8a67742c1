package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableRedisClient points at a closed port so any command that
// actually reaches the network fails immediately.
func unreachableRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisProjectLock_DefaultTTL(t *testing.T) {
	client := unreachableRedisClient()
	defer client.Close()

	lock := NewRedisProjectLock(client, 0)
	assert.Equal(t, defaultLockTTL, lock.ttl)

	lock = NewRedisProjectLock(client, 30*time.Second)
	assert.Equal(t, 30*time.Second, lock.ttl)
}

func TestRedisProjectLock_ReleaseWithoutOwnership(t *testing.T) {
	t.Run("never-acquired lock is a no-op", func(t *testing.T) {
		client := unreachableRedisClient()
		defer client.Close()
		lock := NewRedisProjectLock(client, time.Minute)

		// No token is held, so Release must not touch Redis at all; an
		// unreachable client would otherwise surface a network error.
		err := lock.Release(context.Background(), "proj-1")
		assert.NoError(t, err)
	})

	t.Run("failed acquire leaves no token behind", func(t *testing.T) {
		client := unreachableRedisClient()
		defer client.Close()
		lock := NewRedisProjectLock(client, time.Minute)

		acquired, err := lock.Acquire(context.Background(), "proj-1")
		require.Error(t, err)
		assert.False(t, acquired)

		err = lock.Release(context.Background(), "proj-1")
		assert.NoError(t, err)
	})
}

func TestRedisProjectLock_ReleaseScriptComparesToken(t *testing.T) {
	// The release path must be a compare-and-delete on the acquire
	// token, never an unconditional DEL: a holder that outlived the
	// TTL would otherwise free a lock re-acquired by someone else.
	script := releaseScript.Hash()
	assert.NotEmpty(t, script)

	client := unreachableRedisClient()
	defer client.Close()
	lock := NewRedisProjectLock(client, time.Minute)

	// Simulate a held token; the release attempt must go through the
	// script and report the network failure instead of silently
	// deleting nothing.
	lock.mu.Lock()
	lock.tokens["proj-held"] = "token-a"
	lock.mu.Unlock()

	err := lock.Release(context.Background(), "proj-held")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "release project lock")

	// The token is dropped either way so a dead holder cannot wedge
	// the local bookkeeping.
	lock.mu.Lock()
	_, held := lock.tokens["proj-held"]
	lock.mu.Unlock()
	assert.False(t, held)
}
