package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/synccache/store"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Del(ctx, "k"))
	require.NoError(t, s.Del(ctx, "k"), "deleting a missing key is not an error")
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestSetCopiesValue(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'X'

	got, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))

	got[0] = 'Y'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again), "Get must not hand out the stored buffer")
}

func TestQuota(t *testing.T) {
	ctx := context.Background()
	s := New(Config{QuotaBytes: 8})

	require.NoError(t, s.Set(ctx, "k", []byte("1234567"))) // 1+7
	assert.ErrorIs(t, s.Set(ctx, "j", []byte("x")), store.ErrQuotaExceeded)

	// replacing an existing key only counts the delta
	require.NoError(t, s.Set(ctx, "k", []byte("7654321")))
	require.NoError(t, s.Del(ctx, "k"))
	require.NoError(t, s.Set(ctx, "j", []byte("x")))
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	peer := s.Context()
	s.SetAvailable(false)

	assert.False(t, peer.Available(), "availability is per session space")
	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.ErrorIs(t, s.Set(ctx, "k", nil), store.ErrUnavailable)
	assert.ErrorIs(t, s.Del(ctx, "k"), store.ErrUnavailable)
}

func TestWatchSkipsOwnWrites(t *testing.T) {
	ctx := context.Background()
	a := New(Config{})
	b := a.Context()

	var seenA, seenB []store.Change
	stopA, err := a.Watch(ctx, func(c store.Change) { seenA = append(seenA, c) })
	require.NoError(t, err)
	stopB, err := b.Watch(ctx, func(c store.Change) { seenB = append(seenB, c) })
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "k", []byte("1")))
	assert.Empty(t, seenA)
	assert.Equal(t, []store.Change{{Key: "k"}}, seenB)

	got, ok, _ := b.Get(ctx, "k")
	require.True(t, ok, "handles share one session space")
	assert.Equal(t, "1", string(got))

	require.NoError(t, b.Del(ctx, "k"))
	assert.Equal(t, []store.Change{{Key: "k"}}, seenA)

	b.Clear()
	assert.Equal(t, []store.Change{{Key: "k"}, {AllKeys: true}}, seenA)

	stopA()
	stopA()
	stopB()
	require.NoError(t, b.Set(ctx, "k", []byte("2")))
	assert.Len(t, seenA, 2)
}
