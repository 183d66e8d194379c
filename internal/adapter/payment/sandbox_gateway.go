package payment

import (
	"context"
	"strings"

	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/google/uuid"
)

// SandboxGateway hands out provider order ids locally. Pair it with
// security.PaymentSigner.Sign to produce confirmations in dev.
type SandboxGateway struct{}

func NewSandboxGateway() *SandboxGateway { return &SandboxGateway{} }

func (SandboxGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	id := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	logging.FromCtx(ctx).Info("sandbox provider order created",
		"provider_order_id", id, "amount_minor", amountMinor, "currency", currency, "receipt", receipt)
	return id, nil
}

var _ usecase.PaymentGateway = SandboxGateway{}
