package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/metrics"
	"github.com/aq2208/gstore-api/internal/security"
)

type ConfirmPaymentInput struct {
	SessionID         string // empty for callbacks that do not come from a browser
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
}

type ConfirmPaymentOutput struct {
	OrderID int64
	// Duplicate is set when the order was already paid before this call.
	Duplicate bool
}

// ConfirmPayment moves an order from unpaid to paid after the provider's
// signature checks out. Replays are no-ops.
type ConfirmPayment struct {
	orders   OrderRepo
	verifier PaymentVerifier
	carts    CartStore
	out      OutboxRepo
	tx       TxRunner
	cache    OrderCache // optional
}

func NewConfirmPayment(orders OrderRepo, verifier PaymentVerifier, carts CartStore, out OutboxRepo, tx TxRunner, cache OrderCache) *ConfirmPayment {
	return &ConfirmPayment{orders: orders, verifier: verifier, carts: carts, out: out, tx: tx, cache: cache}
}

func (uc *ConfirmPayment) Execute(ctx context.Context, in ConfirmPaymentInput) (ConfirmPaymentOutput, error) {
	log := logging.FromCtx(ctx).With("provider_order_id", in.ProviderOrderID)

	if strings.TrimSpace(in.ProviderOrderID) == "" || strings.TrimSpace(in.ProviderPaymentID) == "" || strings.TrimSpace(in.Signature) == "" {
		metrics.PaymentConfirmations.WithLabelValues("rejected").Inc()
		return ConfirmPaymentOutput{}, ErrMissingParameters
	}

	outcome, verr := uc.verifier.VerifyPaymentSignature(in.ProviderOrderID, in.ProviderPaymentID, in.Signature)
	switch outcome {
	case security.Valid:
	case security.ProviderError:
		log.Error("payment signature check could not run", "err", verr)
		metrics.PaymentConfirmations.WithLabelValues("error").Inc()
		return ConfirmPaymentOutput{}, fmt.Errorf("%w: %s", ErrSignatureVerificationFailed, outcome)
	default:
		log.Warn("payment signature rejected", "outcome", outcome.String(), "err", verr)
		metrics.PaymentConfirmations.WithLabelValues("rejected").Inc()
		return ConfirmPaymentOutput{}, fmt.Errorf("%w: %s", ErrSignatureVerificationFailed, outcome)
	}

	o, err := uc.orders.GetByProviderOrderID(ctx, in.ProviderOrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			metrics.PaymentConfirmations.WithLabelValues("not_found").Inc()
		}
		return ConfirmPaymentOutput{}, err
	}

	var changed bool
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		changed, err = uc.orders.MarkPaidIf(ctx, o.ID, in.ProviderPaymentID)
		if err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}
		if !changed {
			return nil
		}
		payload, err := json.Marshal(OrderPaidMsg{
			Type:              "OrderPaidV1",
			OrderID:           o.ID,
			ProviderOrderID:   in.ProviderOrderID,
			ProviderPaymentID: in.ProviderPaymentID,
			At:                time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("marshal order paid: %w", err)
		}
		return uc.out.Insert(ctx, ChannelOrderPaid, payload)
	})
	if err != nil {
		metrics.PaymentConfirmations.WithLabelValues("error").Inc()
		return ConfirmPaymentOutput{}, err
	}

	if changed {
		metrics.PaymentConfirmations.WithLabelValues("paid").Inc()
		log.Info("order paid", "order_id", o.ID, "provider_payment_id", in.ProviderPaymentID)
		if uc.cache != nil {
			if err := uc.cache.SetStatus(ctx, o.ID, domain.StatusPaid); err != nil {
				log.Warn("cache order status", "order_id", o.ID, "err", err)
			}
		}
	} else {
		metrics.PaymentConfirmations.WithLabelValues("duplicate").Inc()
		log.Info("duplicate payment confirmation ignored", "order_id", o.ID, "provider_payment_id", in.ProviderPaymentID)
	}

	if in.SessionID != "" {
		if err := uc.carts.Clear(ctx, in.SessionID); err != nil {
			log.Warn("clear cart after payment", "err", err)
		}
	}

	return ConfirmPaymentOutput{OrderID: o.ID, Duplicate: !changed}, nil
}
