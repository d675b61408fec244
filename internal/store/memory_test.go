package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	_, err := mem.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mem.Set(ctx, "k", "v"))
	val, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestMemory_Hash(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	_, err := mem.HGet(ctx, "h", "f")
	assert.ErrorIs(t, err, ErrNotFound)

	total, err := mem.HIncrBy(ctx, "h", "f", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	total, err = mem.HIncrBy(ctx, "h", "f", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	val, err := mem.HGet(ctx, "h", "f")
	require.NoError(t, err)
	assert.Equal(t, "2", val)

	_, err = mem.HGet(ctx, "h", "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_SortedSet(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	for member, score := range map[string]float64{"a": 5, "b": 20, "c": 10} {
		_, err := mem.ZIncrBy(ctx, "z", score, member)
		require.NoError(t, err)
	}

	members, err := mem.ZRevRangeWithScores(ctx, "z", 0, -1)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []Member{{ID: "b", Score: 20}, {ID: "c", Score: 10}, {ID: "a", Score: 5}}, members)

	top, err := mem.ZRevRangeWithScores(ctx, "z", 0, 1)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	rank, err := mem.ZRevRank(ctx, "z", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)

	_, err = mem.ZRevRank(ctx, "z", "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	card, err := mem.ZCard(ctx, "z")
	require.NoError(t, err)
	assert.Equal(t, int64(3), card)
}

func TestMemory_SortedSetTiesOrderedByMember(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	for _, member := range []string{"zeta", "alpha", "mid"} {
		_, err := mem.ZIncrBy(ctx, "z", 7, member)
		require.NoError(t, err)
	}

	members, err := mem.ZRevRangeWithScores(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, "alpha", members[0].ID)
	assert.Equal(t, "mid", members[1].ID)
	assert.Equal(t, "zeta", members[2].ID)
}

func TestMemory_Set_Membership(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	ok, err := mem.SIsMember(ctx, "s", "m")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mem.SAdd(ctx, "s", "m"))
	require.NoError(t, mem.SAdd(ctx, "s", "m")) // idempotent

	ok, err = mem.SIsMember(ctx, "s", "m")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemory_List(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	for _, v := range []string{"first", "second", "third"} {
		require.NoError(t, mem.LPush(ctx, "l", v))
	}

	items, err := mem.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, items)

	require.NoError(t, mem.LTrim(ctx, "l", 0, 1))
	items, err = mem.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second"}, items)

	// Trimming to an empty range drops the key.
	require.NoError(t, mem.LTrim(ctx, "l", 5, 10))
	items, err = mem.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemory_Expiry(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mem.SetNowFunc(func() time.Time { return clock })

	require.NoError(t, mem.Set(ctx, "k", "v"))
	require.NoError(t, mem.Expire(ctx, "k", time.Hour))

	clock = clock.Add(59 * time.Minute)
	val, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	clock = clock.Add(2 * time.Minute)
	_, err = mem.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_SetClearsExpiry(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mem.SetNowFunc(func() time.Time { return clock })

	require.NoError(t, mem.Set(ctx, "k", "v"))
	require.NoError(t, mem.Expire(ctx, "k", time.Minute))
	require.NoError(t, mem.Set(ctx, "k", "v2"))

	clock = clock.Add(time.Hour)
	val, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)
}

func TestMemory_BatchAppliesInOrder(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	err := mem.Batch(ctx, []Op{
		SetOp("flag", "on"),
		HIncrByOp("counts", "trade", 1),
		ZIncrByOp("board", 25, "alice"),
		SAddOp("done", "first_trade"),
		LPushOp("hist", "a"),
		LPushOp("hist", "b"),
		LTrimOp("hist", 0, 0),
		ExpireOp("flag", time.Hour),
	})
	require.NoError(t, err)

	val, err := mem.Get(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, "on", val)

	count, err := mem.HGet(ctx, "counts", "trade")
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	rank, err := mem.ZRevRank(ctx, "board", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rank)

	ok, err := mem.SIsMember(ctx, "done", "first_trade")
	require.NoError(t, err)
	assert.True(t, ok)

	// LTrim runs after both pushes, so only the newest entry survives.
	items, err := mem.LRange(ctx, "hist", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, items)
}
