package kafka

import (
	"context"

	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
)

type PaymentConfirmer interface {
	Execute(ctx context.Context, in usecase.ConfirmPaymentInput) (usecase.ConfirmPaymentOutput, error)
}

// PaymentCallbackHandler reconciles provider callbacks relayed onto Kafka.
// There is no browser session, so no cart is cleared.
type PaymentCallbackHandler struct {
	Confirm PaymentConfirmer
}

func NewPaymentCallbackHandler(c PaymentConfirmer) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{Confirm: c}
}

// Handle swallows rejections that a retry cannot fix (bad signature, unknown
// order) so they do not block the partition.
func (h *PaymentCallbackHandler) Handle(ctx context.Context, ev usecase.PaymentCallbackMsg) error {
	out, err := h.Confirm.Execute(ctx, usecase.ConfirmPaymentInput{
		ProviderOrderID:   ev.ProviderOrderID,
		ProviderPaymentID: ev.ProviderPaymentID,
		Signature:         ev.Signature,
	})
	if err != nil {
		if usecase.IsClientError(err) {
			logging.FromCtx(ctx).Warn("payment callback rejected",
				"provider_order_id", ev.ProviderOrderID, "err", err)
			return nil
		}
		return err
	}
	logging.FromCtx(ctx).Info("payment callback reconciled",
		"order_id", out.OrderID, "duplicate", out.Duplicate)
	return nil
}
