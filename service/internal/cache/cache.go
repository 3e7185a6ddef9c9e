// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/hanabi/engine"
)

// ActionRecord is one processed action as published to the per-game feed.
type ActionRecord struct {
	GameID      uuid.UUID     `json:"gameId"`
	ActionIndex int           `json:"actionIndex"`
	Action      engine.Action `json:"action"`
	Rewound     bool          `json:"rewound,omitempty"`
	Timestamp   int64         `json:"timestamp"`
}

// Connect creates a client and checks the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Cache holds the latest belief snapshot of each game and a feed of its
// processed actions.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps rdb. Keys expire after ttl; zero keeps them forever.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func snapshotKey(id uuid.UUID) string { return "hanabi:game:" + id.String() + ":snapshot" }
func actionsKey(id uuid.UUID) string  { return "hanabi:game:" + id.String() + ":actions" }

// SaveSnapshot stores v as the game's latest snapshot.
func (c *Cache) SaveSnapshot(ctx context.Context, id uuid.UUID, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey(id), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot of %s: %w", id, err)
	}
	return nil
}

// LoadSnapshot decodes the game's snapshot into out. It reports false when
// nothing is cached.
func (c *Cache) LoadSnapshot(ctx context.Context, id uuid.UUID, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot of %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode snapshot of %s: %w", id, err)
	}
	return true, nil
}

// PublishAction appends rec to the game's action feed.
func (c *Cache) PublishAction(ctx context.Context, rec ActionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode action record: %w", err)
	}
	key := actionsKey(rec.GameID)
	pipe := c.rdb.TxPipeline()
	pipe.RPush(ctx, key, raw)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish action %d of %s: %w", rec.ActionIndex, rec.GameID, err)
	}
	return nil
}

// RecentActions returns up to n of the newest records, oldest first.
func (c *Cache) RecentActions(ctx context.Context, id uuid.UUID, n int64) ([]ActionRecord, error) {
	raws, err := c.rdb.LRange(ctx, actionsKey(id), -n, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read actions of %s: %w", id, err)
	}
	out := make([]ActionRecord, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal([]byte(raw), &out[i]); err != nil {
			return nil, fmt.Errorf("decode action record: %w", err)
		}
	}
	return out, nil
}

// Drop removes everything cached for the game.
func (c *Cache) Drop(ctx context.Context, id uuid.UUID) error {
	if err := c.rdb.Del(ctx, snapshotKey(id), actionsKey(id)).Err(); err != nil {
		return fmt.Errorf("drop %s: %w", id, err)
	}
	return nil
}
