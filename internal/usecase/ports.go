package usecase

import (
	"context"
	"io"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/security"
)

// CatalogRepo is read-only from the core's point of view.
type CatalogRepo interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error) // ErrProductNotFound
	ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CartStore persists the per-session raw cart. Update must be an atomic
// read-modify-write: fn sees the latest state and its result is stored only
// if nobody else wrote in between.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (domain.CartState, error)
	Update(ctx context.Context, sessionID string, fn func(*domain.CartState) error) (domain.CartState, error)
	Clear(ctx context.Context, sessionID string) error
}

type OrderRepo interface {
	// Create inserts the order and its items and returns the new id.
	Create(ctx context.Context, o *domain.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)                          // ErrOrderNotFound
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Order, error) // ErrOrderNotFound
	// AttachProviderOrder sets the provider order id on an unpaid order that has none.
	AttachProviderOrder(ctx context.Context, id int64, providerOrderID string) (bool, error)
	// MarkPaidIf flips paid false->true and records the payment id. It reports
	// false when the order was already paid (nothing written).
	MarkPaidIf(ctx context.Context, id int64, providerPaymentID string) (bool, error)
}

type OutboxRecord struct {
	ID         int64
	Channel    string
	Payload    []byte
	RetryCount int
	CreatedAt  time.Time
}

type OutboxRepo interface {
	Insert(ctx context.Context, channel string, payload []byte) error
	FetchPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, nextAttempt time.Time) error
}

// TxRunner runs fn in one database transaction. Repos called with the ctx
// passed to fn join that transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdempotencyStore dedupes client retries. A lock is held from TryLock until
// either Remember records the result or Release frees it after a failure.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID int64, status domain.Status) error
	GetStatus(ctx context.Context, orderID int64) (domain.Status, bool, error)
}

type PaymentVerifier interface {
	VerifyPaymentSignature(providerOrderID, providerPaymentID, signature string) (security.Outcome, error)
}

// PaymentGateway creates the provider-side order a browser checkout pays against.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
}

type InvoiceRenderer interface {
	ContentType() string
	Render(w io.Writer, inv Invoice) error
}
