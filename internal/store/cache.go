package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

const slotCachePrefix = "slots:"

// SlotCache caches derived slot catalogs per date in Redis. Keys are
// scoped by the caller's snapshot generation: a booking change bumps the
// generation, so a slow writer finishing after the change lands its
// catalog on a dead key that no reader asks for. Entries also expire
// after the TTL and are swept on every booking change.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSlotCache wraps an existing Redis client. A zero ttl falls back to
// 30 seconds.
func NewSlotCache(rdb *redis.Client, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

// Get returns the catalog cached for date under the given snapshot
// generation, or ok=false on miss or error.
func (c *SlotCache) Get(ctx context.Context, gen uint64, date string) ([]models.Slot, bool) {
	data, err := c.rdb.Get(ctx, slotKey(gen, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var catalog []models.Slot
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, false
	}
	return catalog, true
}

// Set stores the catalog for date under gen, which must be the snapshot
// generation the catalog was derived from. Errors are swallowed: the
// cache is an optimization, never a source of truth.
func (c *SlotCache) Set(ctx context.Context, gen uint64, date string, catalog []models.Slot) {
	data, err := json.Marshal(catalog)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, slotKey(gen, date), data, c.ttl)
}

func slotKey(gen uint64, date string) string {
	return fmt.Sprintf("%s%d:%s", slotCachePrefix, gen, date)
}

// InvalidateAll drops every cached catalog. Called on each booking
// snapshot since a change on any date may touch any cached view.
func (c *SlotCache) InvalidateAll(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, slotCachePrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		c.rdb.Del(ctx, keys...)
	}
}
