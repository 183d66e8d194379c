package usecase

import (
	"context"
	"errors"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
)

type OrderView struct {
	Order *domain.Order
	// Totals is nil when an item lost its product and tax cannot be derived.
	Totals *domain.Totals
	Status domain.Status
}

// OrderQuery backs the order success page and the back-office lookup.
type OrderQuery struct {
	orders OrderRepo
	cache  OrderCache // optional
}

func NewOrderQuery(orders OrderRepo, cache OrderCache) *OrderQuery {
	return &OrderQuery{orders: orders, cache: cache}
}

func (q *OrderQuery) Get(ctx context.Context, id int64) (OrderView, error) {
	o, err := q.orders.GetByID(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	v := OrderView{Order: o, Status: o.Status()}
	tot, err := o.Totals()
	switch {
	case err == nil:
		v.Totals = &tot
	case !errors.Is(err, ErrMissingProductReference):
		return OrderView{}, err
	}
	return v, nil
}

// Status answers from the cache first and falls back to the database.
func (q *OrderQuery) Status(ctx context.Context, id int64) (domain.Status, error) {
	if q.cache != nil {
		if st, ok, err := q.cache.GetStatus(ctx, id); err == nil && ok {
			return st, nil
		}
	}
	o, err := q.orders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if q.cache != nil {
		if err := q.cache.SetStatus(ctx, id, o.Status()); err != nil {
			logging.FromCtx(ctx).Warn("cache order status", "order_id", id, "err", err)
		}
	}
	return o.Status(), nil
}
