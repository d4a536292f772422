package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/reuniteit/internal/repository"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)
}

func TestCache_Miss(t *testing.T) {
	c := NewCache()
	defer c.Close()

	_, err := c.Get(context.Background(), "absent")
	require.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 10*time.Millisecond))

	_, err := c.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(ctx, "short")
	require.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))

	time.Sleep(10 * time.Millisecond)

	_, err := c.Get(ctx, "forever")
	require.NoError(t, err)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	// Absent keys in the batch are not an error.
	require.NoError(t, c.Delete(ctx, "a", "b", "c"))

	_, err := c.Get(ctx, "a")
	require.ErrorIs(t, err, repository.ErrCacheMiss)
	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_ValueIsolation(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	defer c.Close()

	original := []byte("immutable")
	require.NoError(t, c.Set(ctx, "key", original, 0))

	original[0] = 'X'

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("immutable"), got)

	// Mutating the returned copy does not poison the cache either.
	got[0] = 'Y'
	again, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("immutable"), again)
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
