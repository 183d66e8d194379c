package usecase_test

import (
	"context"
	"testing"

	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		err  error
	}{
		{"", 1, nil},
		{"3", 3, nil},
		{" 2 ", 2, nil},
		{"0", 0, usecase.ErrInvalidQuantity},
		{"-1", 0, usecase.ErrInvalidQuantity},
		{"abc", 0, usecase.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		got, err := usecase.ParseQuantity(tc.raw)
		assert.ErrorIs(t, err, tc.err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestCartAddMergesAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.cart.Add(ctx, usecase.AddItemInput{SessionID: sid, ProductID: "1", Quantity: "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.CartCount)
	assert.Equal(t, "210.00", out.Total.StringFixed(2))

	out, err = f.cart.Add(ctx, usecase.AddItemInput{SessionID: sid, ProductID: "2"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.CartCount)
	assert.Equal(t, "262.50", out.Total.StringFixed(2))

	view, err := f.cart.View(ctx, sid)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, int64(1), view.Lines[0].Product.ID)
	assert.Equal(t, "200.00", view.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "250.00", view.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "12.50", view.Totals.Tax.StringFixed(2))
	assert.Equal(t, "262.50", view.Totals.Total.StringFixed(2))
}

func TestCartAddRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, usecase.AddItemInput{SessionID: sid, ProductID: "1", Quantity: "0"})
	assert.ErrorIs(t, err, usecase.ErrInvalidQuantity)

	_, err = f.cart.Add(ctx, usecase.AddItemInput{SessionID: sid, ProductID: " "})
	assert.ErrorIs(t, err, usecase.ErrInvalidProductID)

	st, _ := f.carts.Load(ctx, sid)
	assert.True(t, st.IsEmpty())
}

func TestCartUpdateActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1", "1")
	f.add(t, "2", "1")

	out, err := f.cart.Update(ctx, sid, usecase.ActionIncrement, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, out.CartCount)

	_, err = f.cart.Update(ctx, sid, usecase.ActionDecrement, "2")
	require.NoError(t, err)
	st, _ := f.carts.Load(ctx, sid)
	q, ok := st.Quantity("2")
	assert.True(t, ok)
	assert.Equal(t, 1, q, "decrement floors at one")

	out, err = f.cart.Update(ctx, sid, usecase.ActionDelete, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, out.CartCount)
	assert.Equal(t, "200.00", out.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", out.Totals.Tax.StringFixed(2))
	assert.Equal(t, "210.00", out.Totals.Total.StringFixed(2))

	_, err = f.cart.Update(ctx, sid, usecase.ActionDelete, "2")
	assert.ErrorIs(t, err, usecase.ErrItemNotFound)

	_, err = f.cart.Update(ctx, sid, usecase.CartAction("explode"), "1")
	assert.ErrorIs(t, err, usecase.ErrInvalidAction)
}

func TestCartViewSkipsMissingProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1", "1")
	f.add(t, "999", "4")
	f.add(t, "not-a-number", "1")

	view, err := f.cart.View(ctx, sid)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 6, view.Count, "raw count includes unknown lines")
	assert.Equal(t, "105.00", view.Totals.Total.StringFixed(2))

	st, _ := f.carts.Load(ctx, sid)
	assert.Len(t, st.Lines, 3, "raw cart untouched")
}

func TestCartViewEmpty(t *testing.T) {
	f := newFixture(t)
	view, err := f.cart.View(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Totals.Total.IsZero())
}
