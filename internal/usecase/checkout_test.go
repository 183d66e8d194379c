package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutPersistsOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1", "2")
	f.add(t, "2", "1")

	out, err := f.checkout.Execute(ctx, usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	require.NoError(t, err)
	assert.False(t, out.Paid)

	o, err := f.store.GetByID(ctx, out.OrderID)
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "100.00", o.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, domain.StatusUnpaid, o.Status())

	tot, err := o.Totals()
	require.NoError(t, err)
	assert.Equal(t, "250.00", tot.Subtotal.StringFixed(2))
	assert.Equal(t, "12.50", tot.Tax.StringFixed(2))
	assert.Equal(t, "262.50", tot.Total.StringFixed(2))

	st, _ := f.carts.Load(ctx, sid)
	assert.True(t, st.IsEmpty())

	pending := f.store.Outbox().Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, usecase.ChannelOrderPlaced, pending[0].Channel)
	var msg usecase.OrderPlacedMsg
	require.NoError(t, json.Unmarshal(pending[0].Payload, &msg))
	assert.Equal(t, out.OrderID, msg.OrderID)
	assert.Equal(t, "262.50", msg.Total)
}

func TestCheckoutKeepsLinesAddedByAnotherTab(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1", "1")

	// another tab adds to the same session right after checkout reads the cart
	carts := &interleavingCarts{CartStore: f.carts, after: func() {
		_, err := f.cart.Add(ctx, usecase.AddItemInput{SessionID: sid, ProductID: "2", Quantity: "3"})
		require.NoError(t, err)
	}}
	co := usecase.NewCheckout(f.cart, carts, f.store, f.outbox, f.store, f.idem, usecase.CheckoutOptions{Currency: "INR"})

	out, err := co.Execute(ctx, usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	require.NoError(t, err)

	o, err := f.store.GetByID(ctx, out.OrderID)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(1), o.Items[0].Product.ID)

	st, _ := f.carts.Load(ctx, sid)
	assert.Equal(t, []domain.CartLine{{ProductID: "2", Quantity: 3}}, st.Lines)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.Execute(context.Background(), usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assert.Empty(t, f.store.Outbox().Pending())
}

func TestCheckoutEmptyAfterCatalogDrop(t *testing.T) {
	f := newFixture(t)
	f.add(t, "1", "1")
	f.store.DeleteProduct(1)

	_, err := f.checkout.Execute(context.Background(), usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
}

func TestCheckoutInvalidCustomer(t *testing.T) {
	f := newFixture(t)
	f.add(t, "1", "1")
	c := customer()
	c.City = ""

	_, err := f.checkout.Execute(context.Background(), usecase.CheckoutInput{SessionID: sid, Customer: c})
	assert.ErrorIs(t, err, usecase.ErrInvalidCustomer)

	st, _ := f.carts.Load(context.Background(), sid)
	assert.False(t, st.IsEmpty())
}

func TestCheckoutRollsBackOnOutboxFailure(t *testing.T) {
	f := newFixture(t)
	f.outbox = failingOutbox{f.store.Outbox()}
	f.build()
	ctx := context.Background()
	f.add(t, "1", "1")

	_, err := f.checkout.Execute(ctx, usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	require.Error(t, err)

	_, err = f.store.GetByID(ctx, 1)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
	st, _ := f.carts.Load(ctx, sid)
	assert.Equal(t, 1, st.Count(), "cart kept")
}

func TestCheckoutRestoresCartWhenCommitFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1", "3")
	f.checkout = usecase.NewCheckout(f.cart, f.carts, f.store, f.outbox, failAfterTx{f.store}, f.idem, usecase.CheckoutOptions{Currency: "INR"})

	_, err := f.checkout.Execute(ctx, usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	require.Error(t, err)

	st, _ := f.carts.Load(ctx, sid)
	q, ok := st.Quantity("1")
	assert.True(t, ok)
	assert.Equal(t, 3, q)
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1", "1")
	in := usecase.CheckoutInput{SessionID: sid, IdempotencyKey: "k-1", Customer: customer()}

	first, err := f.checkout.Execute(ctx, in)
	require.NoError(t, err)

	again, err := f.checkout.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, again.OrderID)
	assert.Len(t, f.store.Outbox().Pending(), 1)
}

func TestCheckoutFailureReleasesIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	f.outbox = failingOutbox{f.store.Outbox()}
	f.build()
	ctx := context.Background()
	f.add(t, "1", "1")
	in := usecase.CheckoutInput{SessionID: sid, IdempotencyKey: "k-3", Customer: customer()}

	_, err := f.checkout.Execute(ctx, in)
	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrDuplicate)

	f.outbox = f.store.Outbox()
	f.build()
	out, err := f.checkout.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.OrderID)
}

func TestCheckoutIdempotencyKeyInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1", "1")

	ok, err := f.idem.TryLock(ctx, sid, "k-2")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.checkout.Execute(ctx, usecase.CheckoutInput{SessionID: sid, IdempotencyKey: "k-2", Customer: customer()})
	assert.ErrorIs(t, err, usecase.ErrDuplicate)
}

func TestCheckoutSimulatedPayment(t *testing.T) {
	f := newFixture(t)
	f.checkout = usecase.NewCheckout(f.cart, f.carts, f.store, f.outbox, f.store, f.idem,
		usecase.CheckoutOptions{Currency: "INR", SimulatePaid: true})
	f.add(t, "2", "1")

	out, err := f.checkout.Execute(context.Background(), usecase.CheckoutInput{SessionID: sid, Customer: customer()})
	require.NoError(t, err)
	assert.True(t, out.Paid)

	o, err := f.store.GetByID(context.Background(), out.OrderID)
	require.NoError(t, err)
	assert.True(t, o.Paid)
}
