package usecase_test

import (
	"context"
	"errors"
	"testing"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceBuild(t *testing.T) {
	f := newFixture(t)
	id := f.placeOrder(t)

	inv, err := f.invoices.Build(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, inv.OrderID)
	assert.Equal(t, "Asha Rao", inv.CustomerName)
	assert.Equal(t, "asha@example.com", inv.Email)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, usecase.InvoiceLine{
		ProductName: "Widget", Quantity: 2, LineTotal: "200.00", TaxPercent: "5.00", TaxAmount: "10.00",
	}, inv.Lines[0])
	assert.Equal(t, "250.00", inv.Subtotal)
	assert.Equal(t, "12.50", inv.Tax)
	assert.Equal(t, "262.50", inv.Total)
	assert.False(t, inv.Paid)
	assert.Equal(t, "invoice_order_1.pdf", inv.Filename())
}

func TestInvoiceMissingProductReference(t *testing.T) {
	f := newFixture(t)
	id := f.placeOrder(t)
	f.store.DeleteProduct(2)

	_, err := f.invoices.Build(context.Background(), id)
	assert.ErrorIs(t, err, usecase.ErrMissingProductReference)
}

func TestInvoiceUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.invoices.Build(context.Background(), 7)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

func TestOrderQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.placeOrder(t)
	q := usecase.NewOrderQuery(f.store, f.cache)

	v, err := q.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, v.Totals)
	assert.Equal(t, "262.50", v.Totals.Total.StringFixed(2))
	assert.Equal(t, domain.StatusUnpaid, v.Status)

	st, err := q.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, st)
	cached, ok, _ := f.cache.GetStatus(ctx, id)
	assert.True(t, ok)
	assert.Equal(t, domain.StatusUnpaid, cached)

	f.store.DeleteProduct(1)
	v, err = q.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, v.Totals)
}

// brokenCache misses every read and fails every write.
type brokenCache struct{}

func (brokenCache) SetStatus(context.Context, int64, domain.Status) error {
	return errors.New("redis down")
}

func (brokenCache) GetStatus(context.Context, int64) (domain.Status, bool, error) {
	return "", false, errors.New("redis down")
}

func TestOrderQueryStatusSurvivesCacheFailure(t *testing.T) {
	f := newFixture(t)
	id := f.placeOrder(t)
	q := usecase.NewOrderQuery(f.store, brokenCache{})

	st, err := q.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, st)
}
