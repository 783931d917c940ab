package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espanolfacil/academy/core/session"
)

func newRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBackend(client, "test", time.Hour), mr
}

func TestKey(t *testing.T) {
	assert.Equal(t, "academy:ctx-1:espanol_facil_user", Key("academy", "ctx-1"))
}

func TestBackends(t *testing.T) {
	redisBackend, _ := newRedisBackend(t)
	backends := map[string]session.Backend{
		"memory": NewMemoryBackend("test"),
		"redis":  redisBackend,
	}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := backend.Record("ctx-1")
			other := backend.Record("ctx-2")

			_, err := rec.Get(ctx)
			assert.Equal(t, session.ErrNoRecord, err)

			require.NoError(t, rec.Set(ctx, []byte(`{"id":"1"}`)))
			data, err := rec.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, `{"id":"1"}`, string(data))

			// records are isolated per context
			_, err = other.Get(ctx)
			assert.Equal(t, session.ErrNoRecord, err)

			require.NoError(t, rec.Delete(ctx))
			_, err = rec.Get(ctx)
			assert.Equal(t, session.ErrNoRecord, err)

			// deleting an absent record is not an error
			assert.NoError(t, rec.Delete(ctx))
		})
	}
}

func TestRedisBackend_ttl(t *testing.T) {
	backend, mr := newRedisBackend(t)
	ctx := context.Background()
	rec := backend.Record("ctx-1")

	require.NoError(t, rec.Set(ctx, []byte("{}")))
	assert.Equal(t, time.Hour, mr.TTL(Key("test", "ctx-1")))

	mr.FastForward(2 * time.Hour)
	_, err := rec.Get(ctx)
	assert.Equal(t, session.ErrNoRecord, err)
}

func TestRedisBackend_unavailable(t *testing.T) {
	backend, mr := newRedisBackend(t)
	mr.Close()

	_, err := backend.Record("ctx-1").Get(context.Background())
	assert.Error(t, err)
	assert.NotEqual(t, session.ErrNoRecord, err)
}
