package redisx

import "time"

const (
	// Cached order row: order:{order_id} -> JSON of orders.Order
	KeyOrder = "order:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	// Outlives any in-flight read (REQUEST_TIMEOUT) so a stale fill loses.
	TTLTombstone = 30 * time.Second
	TTLDedup      = 48 * time.Hour
)
