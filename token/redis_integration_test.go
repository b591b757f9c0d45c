//go:build integration

package token

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	store, err := NewRedisStoreFromURL(ctx, "redis://"+endpoint, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestRedisStore(t *testing.T) {
	store := setupRedisStore(t)

	storeContract(t, func(t *testing.T, _ clockwork.Clock) Store {
		require.NoError(t, store.Clear(context.Background()))
		return store
	})
}

func TestRedisStore_JWTGetsTTL(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, signedJWT(t, time.Now().Add(time.Hour))))

	ttl, err := store.rdb.TTL(ctx, store.Key()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	require.NoError(t, store.SetToken(ctx, "opaque"))

	ttl, err = store.rdb.TTL(ctx, store.Key()).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "opaque tokens never expire")

	assert.ErrorIs(t, store.SetToken(ctx, signedJWT(t, time.Now().Add(-time.Minute))), ErrExpired)
}

func TestNewRedisStoreFromURL_InvalidURL(t *testing.T) {
	_, err := NewRedisStoreFromURL(context.Background(), "://nope", "")
	assert.ErrorContains(t, err, "failed to parse redis URL")
}
