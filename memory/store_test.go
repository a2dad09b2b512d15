package memory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notwitcheer/env-dev-ai-agent/core"
)

// Compile-time interface assertions.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", []byte(`{"x":1}`)))
	data, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(data))

	// Overwrite is a full atomic rewrite.
	require.NoError(t, store.Save(ctx, "s1", []byte(`{"x":2}`)))
	data, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `{"x":2}`, string(data))
}

func TestFileStore_MissingSnapshot(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Load(context.Background(), "never-persisted")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

// Round-trip law: persist then a fresh load on the same path reconstructs
// working memory and conversation history exactly.
func TestSessionMemory_PersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	m := New("s1", func(o *Options) { o.Store = NewFileStore(dir) })
	m.Set("count", 3.0)
	m.Set("nested", map[string]any{"symbol": "ETH", "price": 3120.55})
	m.AddMessage(core.NewMessage(core.RoleUser, "check the price"))
	m.AddMessage(core.NewMessage(core.RoleAssistant, "price fetched"))
	require.NoError(t, m.Persist(ctx))

	fresh := New("s1", func(o *Options) { o.Store = NewFileStore(dir) })
	require.NoError(t, fresh.Load(ctx))

	assert.Equal(t, m.WorkingMemory(), fresh.WorkingMemory())
	orig, loaded := m.Messages(), fresh.Messages()
	require.Len(t, loaded, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].Role, loaded[i].Role)
		assert.Equal(t, orig[i].Content, loaded[i].Content)
		assert.True(t, orig[i].Timestamp.Equal(loaded[i].Timestamp))
	}
}

func TestSessionMemory_LoadWithoutPriorPersist(t *testing.T) {
	m := New("never-persisted", func(o *Options) { o.Store = NewFileStore(t.TempDir()) })
	m.Set("stale", true)
	m.AddMessage(core.NewMessage(core.RoleUser, "stale"))

	// Missing snapshot is not an error; it resets to empty initial state.
	require.NoError(t, m.Load(context.Background()))
	assert.Empty(t, m.Keys())
	assert.Empty(t, m.Messages())
}

func TestRedisStore_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewRedisStore(client)
	ctx := context.Background()

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, store.Save(ctx, "s1", []byte(`{"x":1}`)))
	data, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(data))

	// Keys are namespaced under the prefix.
	assert.True(t, srv.Exists("envagent:snapshot:s1"))
}

func TestRedisStore_SessionMemoryRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	ctx := context.Background()

	m := New("s2", func(o *Options) { o.Store = NewRedisStore(client) })
	m.Set("k", "v")
	m.AddMessage(core.NewMessage(core.RoleUser, "hello"))
	require.NoError(t, m.Persist(ctx))

	fresh := New("s2", func(o *Options) { o.Store = NewRedisStore(client) })
	require.NoError(t, fresh.Load(ctx))
	v, ok := fresh.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Len(t, fresh.Messages(), 1)
}
