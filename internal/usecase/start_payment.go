package usecase

import (
	"context"
	"fmt"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
)

type StartPaymentOutput struct {
	OrderID         int64
	ProviderOrderID string
	AmountMinor     int64
	Currency        string
	KeyID           string
}

// StartPayment creates (or reuses) the provider-side order for an unpaid order.
type StartPayment struct {
	orders   OrderRepo
	gateway  PaymentGateway
	currency string
	keyID    string
}

func NewStartPayment(orders OrderRepo, gateway PaymentGateway, currency, keyID string) *StartPayment {
	return &StartPayment{orders: orders, gateway: gateway, currency: currency, keyID: keyID}
}

func (uc *StartPayment) Execute(ctx context.Context, orderID int64) (StartPaymentOutput, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return StartPaymentOutput{}, err
	}
	if o.Paid {
		return StartPaymentOutput{}, ErrAlreadyPaid
	}
	total, err := o.Total()
	if err != nil {
		return StartPaymentOutput{}, err
	}

	out := StartPaymentOutput{
		OrderID:         o.ID,
		ProviderOrderID: o.ProviderOrderID,
		AmountMinor:     domain.MinorUnits(total),
		Currency:        uc.currency,
		KeyID:           uc.keyID,
	}
	if out.ProviderOrderID != "" {
		return out, nil
	}

	pid, err := uc.gateway.CreateOrder(ctx, out.AmountMinor, uc.currency, fmt.Sprintf("order_%d", o.ID))
	if err != nil {
		return StartPaymentOutput{}, fmt.Errorf("provider create order: %w", err)
	}
	attached, err := uc.orders.AttachProviderOrder(ctx, o.ID, pid)
	if err != nil {
		return StartPaymentOutput{}, fmt.Errorf("attach provider order: %w", err)
	}
	if !attached {
		// Lost a race with another tab or the order got paid meanwhile; return what is stored.
		cur, err := uc.orders.GetByID(ctx, o.ID)
		if err != nil {
			return StartPaymentOutput{}, err
		}
		if cur.Paid {
			return StartPaymentOutput{}, ErrAlreadyPaid
		}
		pid = cur.ProviderOrderID
	}

	out.ProviderOrderID = pid
	logging.FromCtx(ctx).Info("payment started", "order_id", o.ID, "provider_order_id", pid, "amount_minor", out.AmountMinor)
	return out, nil
}
