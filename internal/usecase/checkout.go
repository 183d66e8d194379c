package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/metrics"
)

type CheckoutInput struct {
	SessionID      string
	IdempotencyKey string
	Customer       domain.Customer
}

type CheckoutOutput struct {
	OrderID int64
	Paid    bool
}

type CheckoutOptions struct {
	Currency string
	// SimulatePaid marks orders paid at checkout (sandbox only).
	SimulatePaid bool
}

type Checkout struct {
	cart   *Cart
	carts  CartStore
	orders OrderRepo
	out    OutboxRepo
	tx     TxRunner
	idem   IdempotencyStore
	opts   CheckoutOptions
}

func NewCheckout(cart *Cart, carts CartStore, orders OrderRepo, out OutboxRepo, tx TxRunner, idem IdempotencyStore, opts CheckoutOptions) *Checkout {
	return &Checkout{cart: cart, carts: carts, orders: orders, out: out, tx: tx, idem: idem, opts: opts}
}

func (uc *Checkout) Execute(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	log := logging.FromCtx(ctx)

	// Fast path: idempotency recall
	if in.IdempotencyKey != "" && uc.idem != nil {
		if v, ok, _ := uc.idem.Recall(ctx, in.SessionID, in.IdempotencyKey); ok {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				log.Info("checkout replayed from idempotency key", "order_id", id)
				return CheckoutOutput{OrderID: id, Paid: uc.opts.SimulatePaid}, nil
			}
		}
	}

	if err := in.Customer.Validate(); err != nil {
		metrics.Checkouts.WithLabelValues("invalid").Inc()
		return CheckoutOutput{}, err
	}

	// One read of the cart: the order is built from it and exactly these lines
	// are taken out of the cart later. Prices are re-read from the catalog now.
	snapshot, err := uc.carts.Load(ctx, in.SessionID)
	if err != nil {
		return CheckoutOutput{}, fmt.Errorf("load cart: %w", err)
	}
	view, err := uc.cart.enrich(ctx, snapshot)
	if err != nil {
		return CheckoutOutput{}, err
	}
	if len(view.Lines) == 0 {
		metrics.Checkouts.WithLabelValues("empty").Inc()
		return CheckoutOutput{}, ErrEmptyCart
	}

	if in.IdempotencyKey != "" && uc.idem != nil {
		ok, err := uc.idem.TryLock(ctx, in.SessionID, in.IdempotencyKey)
		if err != nil {
			return CheckoutOutput{}, fmt.Errorf("idempotency lock: %w", err)
		}
		if !ok {
			return CheckoutOutput{}, ErrDuplicate
		}
	}

	order := &domain.Order{
		Customer:  in.Customer,
		CreatedAt: time.Now().UTC(),
		Paid:      uc.opts.SimulatePaid,
	}
	for _, l := range view.Lines {
		p := l.Product
		order.Items = append(order.Items, domain.OrderItem{
			Product:   &p,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	cleared := false
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		id, err := uc.orders.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.ID = id

		payload, err := json.Marshal(OrderPlacedMsg{
			Type:     "OrderPlacedV1",
			OrderID:  id,
			Email:    order.Customer.Email,
			Items:    len(order.Items),
			Total:    domain.Money(view.Totals.Total),
			Currency: uc.opts.Currency,
			Paid:     order.Paid,
			At:       order.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal order placed: %w", err)
		}
		if err := uc.out.Insert(ctx, ChannelOrderPlaced, payload); err != nil {
			return fmt.Errorf("outbox insert: %w", err)
		}

		// Last step inside the transaction so a failure here rolls the order back.
		// Lines another tab added since the read above stay in the cart.
		if _, err := uc.carts.Update(ctx, in.SessionID, func(c *domain.CartState) error {
			c.Subtract(snapshot)
			return nil
		}); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		cleared = true
		return nil
	})
	if err != nil {
		metrics.Checkouts.WithLabelValues("error").Inc()
		if in.IdempotencyKey != "" && uc.idem != nil {
			if rerr := uc.idem.Release(ctx, in.SessionID, in.IdempotencyKey); rerr != nil {
				log.Warn("release idempotency key", "err", rerr)
			}
		}
		if cleared {
			if _, rerr := uc.carts.Update(ctx, in.SessionID, func(c *domain.CartState) error {
				c.Merge(snapshot)
				return nil
			}); rerr != nil {
				log.Error("restore cart after failed checkout", "err", rerr)
			}
		}
		return CheckoutOutput{}, err
	}

	if in.IdempotencyKey != "" && uc.idem != nil {
		if err := uc.idem.Remember(ctx, in.SessionID, in.IdempotencyKey, strconv.FormatInt(order.ID, 10)); err != nil {
			log.Warn("remember idempotency key", "err", err)
		}
	}

	metrics.Checkouts.WithLabelValues("ok").Inc()
	log.Info("order placed", "order_id", order.ID, "items", len(order.Items),
		"total", domain.Money(view.Totals.Total), "paid", order.Paid)
	return CheckoutOutput{OrderID: order.ID, Paid: order.Paid}, nil
}
