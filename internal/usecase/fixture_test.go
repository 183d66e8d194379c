package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aq2208/gstore-api/internal/adapter/memory"
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/security"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const sid = "sess-1"

type fixture struct {
	store  *memory.Store
	outbox usecase.OutboxRepo
	carts  *memory.CartStore
	idem   *memory.IdempotencyStore
	cache  *memory.StatusCache
	signer *security.PaymentSigner

	cart     *usecase.Cart
	checkout *usecase.Checkout
	confirm  *usecase.ConfirmPayment
	gateway  *fakeGateway
	start    *usecase.StartPayment
	invoices *usecase.Invoices
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		carts: memory.NewCartStore(),
		idem:  memory.NewIdempotencyStore(),
		cache: memory.NewStatusCache(),
	}
	f.outbox = f.store.Outbox()
	f.store.AddCategory(domain.Category{ID: 1, Name: "Gear", Slug: "gear"})
	f.store.AddProduct(domain.Product{ID: 1, CategoryID: 1, Name: "Widget", Price: dec("100.00"), TaxPercent: dec("5")})
	f.store.AddProduct(domain.Product{ID: 2, CategoryID: 1, Name: "Gadget", Price: dec("50.00"), TaxPercent: dec("5")})

	var err error
	f.signer, err = security.NewPaymentSigner(&security.KeyMaterial{KeyID: "rzp_test", KeySecret: []byte("secret")})
	require.NoError(t, err)
	f.gateway = &fakeGateway{}
	f.build()
	return f
}

func (f *fixture) build() {
	f.cart = usecase.NewCart(f.store, f.carts)
	f.checkout = usecase.NewCheckout(f.cart, f.carts, f.store, f.outbox, f.store, f.idem, usecase.CheckoutOptions{Currency: "INR"})
	f.confirm = usecase.NewConfirmPayment(f.store, f.signer, f.carts, f.outbox, f.store, f.cache)
	f.start = usecase.NewStartPayment(f.store, f.gateway, "INR", "rzp_test")
	f.invoices = usecase.NewInvoices(f.store, "INR")
}

func (f *fixture) add(t *testing.T, pid, qty string) {
	t.Helper()
	_, err := f.cart.Add(context.Background(), usecase.AddItemInput{SessionID: sid, ProductID: pid, Quantity: qty})
	require.NoError(t, err)
}

// placeOrder checks out 2x Widget + 1x Gadget and attaches provider order "order_P1".
func (f *fixture) placeOrder(t *testing.T) int64 {
	t.Helper()
	f.add(t, "1", "2")
	f.add(t, "2", "1")
	out, err := f.checkout.Execute(context.Background(), usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	require.NoError(t, err)
	f.gateway.nextID = "order_P1"
	_, err = f.start.Execute(context.Background(), out.OrderID)
	require.NoError(t, err)
	return out.OrderID
}

func customer() domain.Customer {
	return domain.Customer{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com",
		Phone: "9999999999", Address: "12 MG Road", City: "Pune",
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeGateway struct {
	mu     sync.Mutex
	nextID string
	calls  int
	err    error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.nextID == "" {
		return fmt.Sprintf("order_%s_%d", receipt, amountMinor), nil
	}
	return g.nextID, nil
}

// interleavingCarts runs after once, right after the first Load returns.
type interleavingCarts struct {
	*memory.CartStore
	after func()
	once  sync.Once
}

func (c *interleavingCarts) Load(ctx context.Context, sessionID string) (domain.CartState, error) {
	st, err := c.CartStore.Load(ctx, sessionID)
	c.once.Do(c.after)
	return st, err
}

// failingOutbox fails every Insert.
type failingOutbox struct{ usecase.OutboxRepo }

func (failingOutbox) Insert(context.Context, string, []byte) error {
	return errors.New("outbox down")
}

// failAfterTx runs fn then fails, like a commit error.
type failAfterTx struct{ inner usecase.TxRunner }

func (r failAfterTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := r.inner.WithinTx(ctx, fn); err != nil {
		return err
	}
	return errors.New("commit failed")
}
