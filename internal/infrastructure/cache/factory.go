package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/istlgroup/crm-backend/internal/application/stats"
	"github.com/istlgroup/crm-backend/internal/infrastructure/config"
)

// ProjectLockFactory creates the per-project recalculation lock based on
// configuration
type ProjectLockFactory struct {
	redisConfig      config.RedisConfig
	logger           *zap.Logger
	allowMemFallback bool
}

// ProjectLockFactoryOption is a functional option for configuring the factory
type ProjectLockFactoryOption func(*ProjectLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ProjectLockFactoryOption {
	return func(f *ProjectLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// lock when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ProjectLockFactoryOption {
	return func(f *ProjectLockFactory) {
		f.allowMemFallback = allow
	}
}

// NewProjectLockFactory creates a new factory
func NewProjectLockFactory(cfg config.RedisConfig, opts ...ProjectLockFactoryOption) *ProjectLockFactory {
	f := &ProjectLockFactory{
		redisConfig:      cfg,
		logger:           zap.NewNop(),
		allowMemFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds a lock for the requested backend. A Redis backend that
// cannot be reached falls back to the in-memory lock when allowed; the
// in-memory lock cannot serialize across instances, so the fallback is
// logged loudly.
func (f *ProjectLockFactory) Create(backend string, ttl time.Duration) (stats.ProjectLock, error) {
	switch backend {
	case "memory":
		return NewInMemoryProjectLock(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", f.redisConfig.Host, f.redisConfig.Port),
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			if !f.allowMemFallback {
				return nil, fmt.Errorf("failed to connect to Redis: %w", err)
			}
			f.logger.Warn("Redis unavailable, falling back to in-memory project lock",
				zap.String("addr", fmt.Sprintf("%s:%d", f.redisConfig.Host, f.redisConfig.Port)),
				zap.Error(err))
			return NewInMemoryProjectLock(), nil
		}

		f.logger.Info("Using Redis project lock",
			zap.String("addr", fmt.Sprintf("%s:%d", f.redisConfig.Host, f.redisConfig.Port)))
		return NewRedisProjectLock(client, ttl), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", backend)
	}
}
