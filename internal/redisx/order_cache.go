package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-orders-api/internal/orders"
	"github.com/redis/go-redis/v9"
)

// tombstone marks a key as recently written; Get treats it as a miss and
// Set never replaces it.
const tombstone = "-"

// OrderCache is a read-through cache in front of orders.Repo.FindByID.
// Writers evict, they never update the cached copy.
type OrderCache struct {
	RDB          *redis.Client
	TTL          time.Duration
	TombstoneTTL time.Duration
}

func NewOrderCache(rdb *redis.Client) *OrderCache {
	return &OrderCache{RDB: rdb, TTL: TTLOrderCache, TombstoneTTL: TTLTombstone}
}

func orderKey(id int64) string { return fmt.Sprintf(KeyOrder, id) }

// Get reports false on a miss.
func (c *OrderCache) Get(ctx context.Context, id int64) (orders.Order, bool, error) {
	b, err := c.RDB.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return orders.Order{}, false, nil
	}
	if err != nil {
		return orders.Order{}, false, err
	}
	if string(b) == tombstone {
		return orders.Order{}, false, nil
	}
	var o orders.Order
	if err := json.Unmarshal(b, &o); err != nil {
		return orders.Order{}, false, fmt.Errorf("decode cached order %d: %w", id, err)
	}
	return o, true, nil
}

// Set fills an empty slot only. A row read before a concurrent update or
// delete finds the writer's tombstone and is dropped.
func (c *OrderCache) Set(ctx context.Context, o orders.Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.RDB.SetNX(ctx, orderKey(o.ID), b, c.TTL).Err()
}

// Evict replaces the entry with a tombstone. Call it after the write commits.
func (c *OrderCache) Evict(ctx context.Context, id int64) error {
	return c.RDB.Set(ctx, orderKey(id), tombstone, c.TombstoneTTL).Err()
}
