package token

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return tok
}

func TestExpiry(t *testing.T) {
	exp := epoch.Add(time.Hour)

	got, ok := Expiry(signedJWT(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = Expiry("abc123")
	assert.False(t, ok, "opaque tokens have no expiry")

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "42"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = Expiry(noExp)
	assert.False(t, ok, "JWT without exp has no expiry")
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, newStore func(t *testing.T, clock clockwork.Clock) Store) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t, clockwork.NewFakeClockAt(epoch))

		tok, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, tok)
	})

	t.Run("set and read", func(t *testing.T) {
		s := newStore(t, clockwork.NewFakeClockAt(epoch))

		require.NoError(t, s.SetToken(ctx, "abc123"))

		tok, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc123", tok)
	})

	t.Run("last writer wins", func(t *testing.T) {
		s := newStore(t, clockwork.NewFakeClockAt(epoch))

		require.NoError(t, s.SetToken(ctx, "first"))
		require.NoError(t, s.SetToken(ctx, "second"))

		tok, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", tok)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		s := newStore(t, clockwork.NewFakeClockAt(epoch))

		require.NoError(t, s.SetToken(ctx, "abc123"))
		require.NoError(t, s.Clear(ctx))
		require.NoError(t, s.Clear(ctx))

		tok, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, tok)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		s := newStore(t, clockwork.NewFakeClockAt(epoch))

		assert.ErrorIs(t, s.SetToken(ctx, ""), ErrEmptyToken)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(_ *testing.T, clock clockwork.Clock) Store {
		return NewMemoryStore(clock)
	})
}

func TestFileStore(t *testing.T) {
	storeContract(t, func(t *testing.T, clock clockwork.Clock) Store {
		return NewFileStore(filepath.Join(t.TempDir(), "nested", "token"), clock)
	})
}

func TestMemoryStore_ExpiresJWT(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(epoch)
	s := NewMemoryStore(clock)

	tok := signedJWT(t, epoch.Add(time.Minute))
	require.NoError(t, s.SetToken(ctx, tok))

	got, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	clock.Advance(time.Minute)

	got, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "token must be gone once exp is reached")
}

func TestMemoryStore_RejectsExpiredJWT(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(epoch))

	err := s.SetToken(context.Background(), signedJWT(t, epoch.Add(-time.Second)))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SetToken(ctx, "abc123")
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Token(ctx)
			_ = s.Clear(ctx)
		}()
	}
	wg.Wait()
}
