package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/istlgroup/crm-backend/internal/application/stats"
)

const defaultLockTTL = 2 * time.Minute

// releaseScript deletes the lock key only when it still holds this
// instance's token, so a holder that outlived the TTL cannot delete a
// lock re-acquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisProjectLock implements stats.ProjectLock using Redis SETNX.
// Suitable for distributed deployments where multiple instances may
// recalculate the same project. The TTL guards against a crashed holder
// leaving a project locked forever; each acquire stores a random token
// and release is a compare-and-delete on that token.
type RedisProjectLock struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisProjectLock creates a Redis-backed per-project lock
func NewRedisProjectLock(client *redis.Client, ttl time.Duration) *RedisProjectLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisProjectLock{
		client:    client,
		keyPrefix: "stats:lock:",
		ttl:       ttl,
		tokens:    make(map[string]string),
	}
}

// Acquire attempts to take the lock for one project. Returns false
// without error when another holder owns it.
func (l *RedisProjectLock) Acquire(ctx context.Context, projectUID string) (bool, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.keyPrefix+projectUID, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire project lock: %w", err)
	}
	if acquired {
		l.mu.Lock()
		l.tokens[projectUID] = token
		l.mu.Unlock()
	}
	return acquired, nil
}

// Release frees the lock for one project if this instance still owns
// it. Releasing a lock that was never acquired here, or that expired
// and moved to another holder, is a no-op.
func (l *RedisProjectLock) Release(ctx context.Context, projectUID string) error {
	l.mu.Lock()
	token, held := l.tokens[projectUID]
	delete(l.tokens, projectUID)
	l.mu.Unlock()
	if !held {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + projectUID}, token).Err(); err != nil {
		return fmt.Errorf("failed to release project lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisProjectLock) Close() error {
	return l.client.Close()
}

// Ensure RedisProjectLock implements stats.ProjectLock
var _ stats.ProjectLock = (*RedisProjectLock)(nil)
