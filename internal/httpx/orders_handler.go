package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-orders-api/internal/auth"
	kafkax "github.com/ariefcatur/go-orders-api/internal/kafka"
	"github.com/ariefcatur/go-orders-api/internal/orders"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type OrderStore interface {
	Create(ctx context.Context, h orders.Header, items []orders.ItemInput) (orders.Created, error)
	ListAll(ctx context.Context) ([]orders.OrderWithCustomer, error)
	FindByID(ctx context.Context, id int64) (orders.Order, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]orders.CustomerOrder, error)
	FindLineItems(ctx context.Context, orderID int64) ([]orders.LineItem, error)
	Update(ctx context.Context, id int64, p orders.Patch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type OrderCache interface {
	Get(ctx context.Context, id int64) (orders.Order, bool, error)
	Set(ctx context.Context, o orders.Order) error
	Evict(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header) error
}

type OrdersHandler struct {
	Repo    OrderStore
	Cache   OrderCache
	Events  EventPublisher
	Service string
	Log     zerolog.Logger
}

type createOrderReq struct {
	Order    orders.Header      `json:"order"`
	Products []orders.ItemInput `json:"products"`
}

type createOrderResp struct {
	Message string `json:"message"`
	orders.Created
}

type updateOrderResp struct {
	Message string       `json:"message"`
	Order   orders.Patch `json:"order"`
}

type deleteOrderResp struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.Repo.ListAll(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list orders")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(all) == 0 {
		writeMessage(w, http.StatusNotFound, "No orders found")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// get is read-through: a cache failure only costs a database read.
func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	o, hit, err := h.Cache.Get(ctx, id)
	if err != nil {
		h.Log.Warn().Err(err).Int64("order_id", id).Msg("order cache read")
	}
	if hit {
		writeJSON(w, http.StatusOK, o)
		return
	}

	o, err = h.Repo.FindByID(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Int64("order_id", id).Msg("find order")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.Cache.Set(ctx, o); err != nil {
		h.Log.Warn().Err(err).Int64("order_id", id).Msg("order cache write")
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) byCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerId")
	if !ok {
		return
	}
	out, err := h.Repo.FindByCustomer(r.Context(), customerID)
	if errors.Is(err, orders.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "No orders found")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Int64("customer_id", customerID).Msg("find customer orders")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) items(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	items, err := h.Repo.FindLineItems(r.Context(), id)
	if err != nil {
		h.Log.Error().Err(err).Int64("order_id", id).Msg("find order items")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(items) == 0 {
		writeMessage(w, http.StatusNotFound, "No items found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var req createOrderReq
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	created, err := h.Repo.Create(r.Context(), req.Order, req.Products)
	if errors.Is(err, orders.ErrValidation) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to create order")
		return
	}

	h.Log.Info().Int64("order_id", created.OrderID).Int64("by", caller.UserID).Msg("order created")
	h.publish(r, orders.TopicOrderCreated, orders.EventOrderCreated, created.OrderID, orders.CreatedPayload(created))
	writeJSON(w, http.StatusCreated, createOrderResp{Message: "Order created", Created: created})
}

// update answers 400, not 404, for an unknown id.
func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var p orders.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	updated, err := h.Repo.Update(r.Context(), id, p)
	if errors.Is(err, orders.ErrValidation) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil || !updated {
		writeMessage(w, http.StatusBadRequest, "Failed to update order")
		return
	}

	h.evict(r.Context(), id)
	h.Log.Info().Int64("order_id", id).Int64("by", caller.UserID).Strs("fields", p.Fields()).Msg("order updated")
	h.publish(r, orders.TopicOrderUpdated, orders.EventOrderUpdated, id,
		orders.OrderUpdatedPayload{OrderID: id, Fields: p.Fields()})
	writeJSON(w, http.StatusOK, updateOrderResp{Message: "Order updated", Order: p})
}

// remove answers 400, not 404, for an unknown id.
func (h *OrdersHandler) remove(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(r.Context(), id)
	if err != nil || !deleted {
		writeMessage(w, http.StatusBadRequest, "Failed to delete order")
		return
	}

	h.evict(r.Context(), id)
	h.Log.Info().Int64("order_id", id).Int64("by", caller.UserID).Msg("order deleted")
	h.publish(r, orders.TopicOrderDeleted, orders.EventOrderDeleted, id, orders.OrderDeletedPayload{OrderID: id})
	writeJSON(w, http.StatusOK, deleteOrderResp{Message: "Order deleted", ID: id})
}

func (h *OrdersHandler) evict(ctx context.Context, id int64) {
	if err := h.Cache.Evict(ctx, id); err != nil {
		h.Log.Warn().Err(err).Int64("order_id", id).Msg("order cache evict")
	}
}

// publish runs after commit; a lost event never fails the request.
func (h *OrdersHandler) publish(r *http.Request, topic, eventType string, orderID int64, payload any) {
	if h.Events == nil {
		return
	}
	env, err := orders.NewEnvelope(eventType, h.Service, middleware.GetReqID(r.Context()), orderID, payload)
	if err != nil {
		h.Log.Error().Err(err).Int64("order_id", orderID).Msg("build event")
		return
	}
	err = h.Events.Publish(topic, orders.PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(orders.EventVersion))},
	)
	if err != nil {
		h.Log.Warn().Err(err).Str("topic", topic).Int64("order_id", orderID).Msg("publish event")
	}
}
