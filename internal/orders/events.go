package orders

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderUpdated = "OrderUpdated"
	EventOrderDeleted = "OrderDeleted"
)

const EventVersion = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	ProductIDs []int64         `json:"product_ids"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderUpdatedPayload struct {
	OrderID int64    `json:"order_id"`
	Fields  []string `json:"fields"`
}

type OrderDeletedPayload struct {
	OrderID int64 `json:"order_id"`
}

// NewEnvelope wraps payload for publishing.
func NewEnvelope(eventType, producer, traceID string, orderID int64, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  EventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       b,
	}, nil
}

func CreatedPayload(c Created) OrderCreatedPayload {
	ids := make([]int64, len(c.Products))
	for i, p := range c.Products {
		ids[i] = p.ProductID
	}
	return OrderCreatedPayload{
		OrderID:    c.OrderID,
		CustomerID: c.Order.CustomerID,
		ProductIDs: ids,
		TotalPrice: c.Order.TotalPrice.Decimal,
	}
}
