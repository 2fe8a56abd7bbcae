package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/synccache/internal/wire"
	"github.com/unkn0wn-root/synccache/store"
)

func TestNewValidates(t *testing.T) {
	_, err := New(Config{Session: "s"})
	assert.ErrorIs(t, err, ErrNilClient)

	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = rdb.Close() })
	_, err = New(Config{Client: rdb})
	assert.ErrorIs(t, err, ErrEmptySession)

	s, err := New(Config{Client: rdb, Session: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "sess:abc:theme", s.key("theme"))
	assert.Equal(t, "sess:abc:changes", s.channel)
	assert.NotEmpty(t, s.origin)
}

func TestChangeFiltersOwnAndCorrupt(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = rdb.Close() })
	s, err := New(Config{Client: rdb, Session: "abc"})
	require.NoError(t, err)

	enc := func(ev wire.Event) string {
		b, err := wire.Encode(ev)
		require.NoError(t, err)
		return string(b)
	}

	_, ok := s.change(enc(wire.Event{Kind: wire.KindSet, Origin: s.origin, Key: "k"}))
	assert.False(t, ok, "own writes are not reported")

	_, ok = s.change("garbage")
	assert.False(t, ok)

	c, ok := s.change(enc(wire.Event{Kind: wire.KindSet, Origin: "peer", Key: "k"}))
	require.True(t, ok)
	assert.Equal(t, store.Change{Key: "k"}, c)

	c, ok = s.change(enc(wire.Event{Kind: wire.KindClear, Origin: "peer"}))
	require.True(t, ok)
	assert.Equal(t, store.Change{AllKeys: true}, c)
}

// TestLiveRedis runs against a real server when SYNCCACHE_REDIS_ADDR is set.
func TestLiveRedis(t *testing.T) {
	addr := os.Getenv("SYNCCACHE_REDIS_ADDR")
	if addr == "" {
		t.Skip("SYNCCACHE_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	session := "test-" + newOrigin()
	a, err := New(Config{Client: rdb, Session: session, TTL: time.Minute})
	require.NoError(t, err)
	b, err := New(Config{Client: rdb, Session: session, TTL: time.Minute})
	require.NoError(t, err)

	changes := make(chan store.Change, 4)
	stop, err := b.Watch(ctx, func(c store.Change) { changes <- c })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, a.Set(ctx, "theme", []byte(`"dark"`)))
	select {
	case c := <-changes:
		assert.Equal(t, store.Change{Key: "theme"}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("no change observed")
	}

	got, ok, err := b.Get(ctx, "theme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"dark"`, string(got))

	require.NoError(t, b.Set(ctx, "own", []byte("1")))
	select {
	case c := <-changes:
		t.Fatalf("own write observed: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, a.Del(ctx, "theme"))
	require.NoError(t, a.Del(ctx, "own"))
}
