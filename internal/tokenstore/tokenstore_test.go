package tokenstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	token, err := store.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, store.Set(ctx, "t1"))
	token, err = store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "t1", token)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	token, err = store.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, "userToken", 0, zerolog.Nop()))
}

func TestRedisStoreExpires(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "", time.Minute, zerolog.Nop())
	require.NoError(t, store.Set(context.Background(), "t1"))
	require.True(t, server.Exists("auth_token"))

	server.FastForward(2 * time.Minute)

	token, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
}
