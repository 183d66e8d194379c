package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededOrder(t *testing.T) (*Store, int64) {
	t.Helper()
	s := NewStore()
	s.AddProduct(domain.Product{ID: 1, Name: "Widget", Price: decimal.RequireFromString("10.00")})
	p, err := s.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	id, err := s.Create(context.Background(), &domain.Order{
		Items: []domain.OrderItem{{Product: p, UnitPrice: p.Price, Quantity: 1}},
	})
	require.NoError(t, err)
	return s, id
}

func TestWithinTxRollbackKeepsConcurrentWrites(t *testing.T) {
	s, id := newSeededOrder(t)
	ctx := context.Background()
	require.NoError(t, s.Outbox().Insert(ctx, usecase.ChannelOrderPlaced, []byte(`{}`)))

	started, release := make(chan struct{}), make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- s.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := s.Create(ctx, &domain.Order{}); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	attached := make(chan bool, 1)
	sent := make(chan error, 1)
	go func() {
		ok, _ := s.AttachProviderOrder(ctx, id, "order_X")
		attached <- ok
		sent <- s.Outbox().MarkSent(ctx, 1)
	}()
	close(release)

	require.Error(t, <-txErr)
	assert.True(t, <-attached)
	require.NoError(t, <-sent)

	o, err := s.GetByProviderOrderID(ctx, "order_X")
	require.NoError(t, err)
	assert.Equal(t, id, o.ID)
	assert.Empty(t, s.Outbox().Pending())

	_, err = s.GetByID(ctx, id+1)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

func TestWithinTxNestedJoinsOuter(t *testing.T) {
	s, id := newSeededOrder(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			ok, err := s.MarkPaidIf(ctx, id, "pay_1")
			require.NoError(t, err)
			assert.True(t, ok)
			return errors.New("inner failed")
		})
	})
	require.Error(t, err)

	o, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, o.Paid, "outer rollback undoes the joined write")
}

func TestOutboxRetrySchedule(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	out := s.Outbox()
	require.NoError(t, out.Insert(ctx, usecase.ChannelOrderPaid, []byte(`{"orderId":1}`)))

	recs, err := out.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, out.MarkFailed(ctx, recs[0].ID, time.Now().Add(time.Hour)))
	recs, err = out.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recs, "not due yet")

	pending := out.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
}
