package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token under one Redis key. JWTs are stored with a
// TTL matching their expiry so Redis drops them on its own.
type RedisStore struct {
	rdb   *redis.Client
	key   string
	clock clockwork.Clock
}

// NewRedisStore returns a store using rdb. An empty key means [DefaultKey].
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{rdb: rdb, key: key, clock: clockwork.NewRealClock()}
}

// NewRedisStoreFromURL connects to redisURL (e.g. "redis://localhost:6379/0")
// and verifies the connection.
func NewRedisStoreFromURL(ctx context.Context, redisURL, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStore(rdb, key), nil
}

// Key returns the Redis key holding the token.
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	var ttl time.Duration
	if exp, ok := Expiry(token); ok {
		ttl = exp.Sub(s.clock.Now())
		if ttl <= 0 {
			return ErrExpired
		}
	}

	if err := s.rdb.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis delete token: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
