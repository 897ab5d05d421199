package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/domain/identity"
)

func stores(t *testing.T) map[string]identity.SessionStore {
	out := map[string]identity.SessionStore{"memory": NewMemoryStore(time.Hour)}

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 14})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return out
	}
	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	out["redis"] = NewRedisStore(client, time.Hour)
	return out
}

func TestSessionStore_GetSetPop(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sid, err := identity.NewSessionID()
			require.NoError(t, err)

			_, ok, err := store.Get(ctx, sid, identity.SessionKeyIdentityID)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, sid, identity.SessionKeyIdentityID, "ident-1"))
			val, ok, err := store.Get(ctx, sid, identity.SessionKeyIdentityID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "ident-1", val)

			val, ok, err = store.Pop(ctx, sid, identity.SessionKeyIdentityID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "ident-1", val)

			_, ok, err = store.Pop(ctx, sid, identity.SessionKeyIdentityID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSessionStore_Destroy(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "sid-destroy", "a", "1"))
			require.NoError(t, store.Destroy(ctx, "sid-destroy"))

			_, ok, err := store.Get(ctx, "sid-destroy", "a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sid", "k", "v"))

	now = now.Add(59 * time.Minute)
	_, ok, _ := store.Get(ctx, "sid", "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = store.Get(ctx, "sid", "k")
	assert.False(t, ok, "session expires at exactly its ttl")
}

func TestSessionStore_EmptyID(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	assert.Error(t, store.Set(context.Background(), "", "k", "v"))
}
