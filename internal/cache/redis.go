package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"halfnote/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore implements Store backed by Redis. Every operation runs under a
// short timeout and reports failures as misses so a cache outage degrades
// to direct DB reads instead of surfacing errors.
type RedisStore struct {
	client    *redis.Client
	opTimeout time.Duration
	logger    *zap.Logger
}

// NewRedisStore creates a Redis-backed cache store. Connection failure at
// startup is returned so the operator sees it, but a store that loses its
// connection later keeps serving misses.
func NewRedisStore(cfg *config.Config, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client:    client,
		opTimeout: cfg.Redis.OpTimeout,
		logger:    logger,
	}, nil
}

// NewRedisStoreFromClient wraps an existing client; used by tests.
func NewRedisStoreFromClient(client *redis.Client, opTimeout time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, opTimeout: opTimeout, logger: logger}
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
// Redis failures are logged and reported as misses.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		s.logger.Warn("cache get failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed",
			zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache delete failed",
			zap.Strings("keys", keys), zap.Error(err))
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure interface is satisfied at compile time.
var _ Store = (*RedisStore)(nil)
