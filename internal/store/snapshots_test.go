package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Version int    `json:"version"`
	Note    string `json:"note"`
}

func newTestStore(t *testing.T, ttl time.Duration) (*Snapshots, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshots(client, ttl), mr
}

func TestSaveAndLoad(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sess-1", payload{Version: 1, Note: "hello"}))

	var got payload
	found, err := s.Load(ctx, "sess-1", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, payload{Version: 1, Note: "hello"}, got)
}

func TestLoadMissing(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)

	var got payload
	found, err := s.Load(context.Background(), "absent", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDelete(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sess-1", payload{Version: 1}))
	require.True(t, mr.Exists("cart:sess-1"))

	require.NoError(t, s.Delete(ctx, "sess-1"))
	require.False(t, mr.Exists("cart:sess-1"))

	// deleting an absent key is fine
	require.NoError(t, s.Delete(ctx, "sess-1"))
}

func TestTTLExpiry(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sess-1", payload{Version: 1}))
	mr.FastForward(2 * time.Minute)

	var got payload
	found, err := s.Load(ctx, "sess-1", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Snapshots
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "x", payload{}))
	found, err := s.Load(ctx, "x", &payload{})
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, s.Delete(ctx, "x"))
}
