// Package invalidator evicts cached orders when another replica reports a
// change on the order topics.
package invalidator

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-orders-api/internal/kafka"
	"github.com/ariefcatur/go-orders-api/internal/orders"
	"github.com/ariefcatur/go-orders-api/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Topics the invalidator subscribes to.
var Topics = []string{orders.TopicOrderUpdated, orders.TopicOrderDeleted}

type Service struct {
	Cache *redisx.OrderCache
	Redis *redis.Client
	Name  string
	Log   zerolog.Logger
}

type orderRef struct {
	OrderID int64 `json:"order_id"`
}

// HandleOrderEvent is the consumer handler. Each event id is processed at
// most once per service name; a failed eviction releases the claim and
// returns the error so the consumer retries the same message.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message, nothing to retry
		s.Log.Warn().Err(err).Str("topic", m.Topic).Int64("offset", m.Offset).Msg("skip undecodable event")
		return nil
	}
	if env.EventType != orders.EventOrderUpdated && env.EventType != orders.EventOrderDeleted {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	fresh, err := redisx.Claim(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("claim %s: %w", env.EventID, err)
	}
	if !fresh {
		return nil
	}

	ref, err := kafkax.UnwrapPayload[orderRef](env.Payload)
	if err != nil {
		s.Log.Warn().Err(err).Str("event_id", env.EventID).Msg("skip event without order id")
		return nil
	}
	if err := s.Cache.Evict(ctx, ref.OrderID); err != nil {
		_ = s.Redis.Del(ctx, dkey).Err()
		return fmt.Errorf("evict order %d: %w", ref.OrderID, err)
	}
	s.Log.Debug().Str("event", env.EventType).Int64("order_id", ref.OrderID).Msg("order cache evicted")
	return nil
}
