package queue

import (
	"context"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
)

// OrderEventsHandler keeps the order-status cache in step with the ledger
// for readers that never touch MySQL.
type OrderEventsHandler struct {
	cache usecase.OrderCache
}

func NewOrderEventsHandler(cache usecase.OrderCache) *OrderEventsHandler {
	return &OrderEventsHandler{cache: cache}
}

// HandlePlaced is intended to be used with the JSON adapter (queue.JSONHandler[usecase.OrderPlacedMsg]).
func (h *OrderEventsHandler) HandlePlaced(ctx context.Context, msg usecase.OrderPlacedMsg) error {
	st := domain.StatusUnpaid
	if msg.Paid {
		st = domain.StatusPaid
	} else if cur, ok, err := h.cache.GetStatus(ctx, msg.OrderID); err == nil && ok && cur == domain.StatusPaid {
		// order.paid overtook order.placed; never downgrade.
		return nil
	}
	logging.FromCtx(ctx).Debug("order placed event", "order_id", msg.OrderID, "status", st)
	return h.cache.SetStatus(ctx, msg.OrderID, st)
}

func (h *OrderEventsHandler) HandlePaid(ctx context.Context, msg usecase.OrderPaidMsg) error {
	logging.FromCtx(ctx).Debug("order paid event", "order_id", msg.OrderID)
	return h.cache.SetStatus(ctx, msg.OrderID, domain.StatusPaid)
}

// Register wires both queues onto r.
func (h *OrderEventsHandler) Register(r *Router) {
	r.Register(QueueOrderPlaced, JSONHandler[usecase.OrderPlacedMsg]{HandleFunc: h.HandlePlaced})
	r.Register(QueueOrderPaid, JSONHandler[usecase.OrderPaidMsg]{HandleFunc: h.HandlePaid})
}
