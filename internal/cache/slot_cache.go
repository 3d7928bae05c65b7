// Package cache keeps generated slots in Redis so repeated availability
// reads skip rule expansion. Entries are keyed per restaurant and date and
// dropped whenever that restaurant's rules or bookings change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// DefaultPrefix namespaces slot keys.
const DefaultPrefix = "restoboost:slots"

const scanBatch = 100

// SlotCache is a Redis-backed slot cache.
type SlotCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewSlotCache creates a SlotCache. A non-positive ttl makes Set a no-op.
func NewSlotCache(client redis.UniversalClient, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl, prefix: DefaultPrefix}
}

func (c *SlotCache) key(restaurantID int64, date model.Date) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, restaurantID, date)
}

// Get returns the cached slots. The bool is false on a miss.
func (c *SlotCache) Get(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, bool, error) {
	data, err := c.client.Get(ctx, c.key(restaurantID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached slots: %w", err)
	}

	var slots []model.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false, fmt.Errorf("decode cached slots: %w", err)
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return slots, true, nil
}

// Set stores slots for ttl.
func (c *SlotCache) Set(ctx context.Context, restaurantID int64, date model.Date, slots []model.Slot) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	if err := c.client.Set(ctx, c.key(restaurantID, date), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached slots: %w", err)
	}
	return nil
}

// InvalidateRestaurant deletes every cached day of a restaurant. Keys are
// collected before any delete so the SCAN cursor never sees a shrinking
// keyspace.
func (c *SlotCache) InvalidateRestaurant(ctx context.Context, restaurantID int64) error {
	pattern := fmt.Sprintf("%s:%d:*", c.prefix, restaurantID)
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cached slots: %w", err)
	}

	for len(keys) > 0 {
		n := min(len(keys), scanBatch)
		if err := c.client.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("delete cached slots: %w", err)
		}
		keys = keys[n:]
	}
	return nil
}

// Ping checks the Redis connection.
func (c *SlotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
