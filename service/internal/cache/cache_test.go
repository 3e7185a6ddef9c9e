package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/hanabi/engine"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, ttl), mr
}

type snap struct {
	Turn  int    `json:"turn"`
	Stack []int  `json:"stack"`
	Note  string `json:"note"`
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()

	var got snap
	ok, err := c.LoadSnapshot(ctx, id, &got)
	require.NoError(t, err)
	assert.False(t, ok, "nothing should be cached yet")

	want := snap{Turn: 4, Stack: []int{1, 0, 2, 0, 0}, Note: "finesse pending"}
	require.NoError(t, c.SaveSnapshot(ctx, id, want))

	ok, err = c.LoadSnapshot(ctx, id, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	assert.True(t, mr.Exists(snapshotKey(id)))
	assert.Equal(t, time.Hour, mr.TTL(snapshotKey(id)))
}

func TestSnapshotExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.SaveSnapshot(ctx, id, snap{Turn: 1}))
	mr.FastForward(2 * time.Minute)

	var got snap
	ok, err := c.LoadSnapshot(ctx, id, &got)
	require.NoError(t, err)
	assert.False(t, ok, "snapshot should have expired")
}

func TestPublishAction(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()
	id := uuid.New()

	for i := range 3 {
		rec := ActionRecord{
			GameID:      id,
			ActionIndex: i,
			Action:      engine.Action{Type: engine.ActionDraw, PlayerIndex: 1, Order: i, SuitIndex: 0, Rank: i + 1},
			Timestamp:   int64(i),
		}
		require.NoError(t, c.PublishAction(ctx, rec))
	}

	recs, err := c.RecentActions(ctx, id, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].ActionIndex)
	assert.Equal(t, 2, recs[1].ActionIndex)
	assert.Equal(t, engine.ActionDraw, recs[1].Action.Type)
	assert.Equal(t, 3, recs[1].Action.Rank)
}

func TestDrop(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.SaveSnapshot(ctx, id, snap{Turn: 2}))
	require.NoError(t, c.PublishAction(ctx, ActionRecord{GameID: id}))
	require.NoError(t, c.Drop(ctx, id))

	assert.False(t, mr.Exists(snapshotKey(id)))
	assert.False(t, mr.Exists(actionsKey(id)))
}
