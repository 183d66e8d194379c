package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aq2208/gstore-api/internal/adapter/memory"
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key, id string
	body    []byte
}

type fakePublisher struct {
	fail bool
	got  []published
}

func (p *fakePublisher) Publish(_ context.Context, key, id string, body []byte) error {
	if p.fail {
		return errors.New("broker unreachable")
	}
	p.got = append(p.got, published{key, id, body})
	return nil
}

func TestOutboxRelaySendsPending(t *testing.T) {
	store := memory.NewStore()
	ob := store.Outbox()
	ctx := context.Background()
	require.NoError(t, ob.Insert(ctx, usecase.ChannelOrderPlaced, []byte(`{"orderId":1}`)))
	require.NoError(t, ob.Insert(ctx, usecase.ChannelOrderPaid, []byte(`{"orderId":1}`)))

	pub := &fakePublisher{}
	relay := NewOutboxRelay(ob, pub, time.Second, 10)

	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.got, 2)
	assert.Equal(t, usecase.ChannelOrderPlaced, pub.got[0].key)
	assert.Equal(t, usecase.ChannelOrderPaid, pub.got[1].key)
	assert.NotEqual(t, pub.got[0].id, pub.got[1].id)
	assert.Empty(t, ob.Pending())

	n, err = relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxRelayBacksOffOnFailure(t *testing.T) {
	store := memory.NewStore()
	ob := store.Outbox()
	ctx := context.Background()
	require.NoError(t, ob.Insert(ctx, usecase.ChannelOrderPlaced, []byte(`{}`)))

	pub := &fakePublisher{fail: true}
	relay := NewOutboxRelay(ob, pub, time.Second, 10)

	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	pending := ob.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)

	// not due yet
	pub.fail = false
	n, err = relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxRelayMessageIDIsDerivedFromRow(t *testing.T) {
	ctx := context.Background()
	ids := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		ob := memory.NewStore().Outbox()
		require.NoError(t, ob.Insert(ctx, usecase.ChannelOrderPlaced, []byte(`{}`)))
		pub := &fakePublisher{}
		_, err := NewOutboxRelay(ob, pub, 0, 0).RelayOnce(ctx)
		require.NoError(t, err)
		require.Len(t, pub.got, 1)
		ids = append(ids, pub.got[0].id)
	}
	assert.Equal(t, ids[0], ids[1], "a re-sent row keeps its message id")
	assert.Len(t, ids[0], 36)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(0))
	assert.Equal(t, 8*time.Second, backoff(3))
	assert.Equal(t, maxRelayBackoff, backoff(9))
	assert.Equal(t, maxRelayBackoff, backoff(64))
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(bool) error { a.acked = true; return nil }
func (a *fakeAck) Nack(_ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func TestAckDecisions(t *testing.T) {
	log := logging.New("test")

	a := &fakeAck{}
	require.NoError(t, ack(a, nil, true, log))
	assert.True(t, a.acked)

	a = &fakeAck{}
	require.NoError(t, ack(a, ErrMalformed, true, log))
	assert.True(t, a.nacked)
	assert.False(t, a.requeued)

	a = &fakeAck{}
	require.NoError(t, ack(a, errors.New("redis down"), true, log))
	assert.True(t, a.nacked)
	assert.True(t, a.requeued)
}

func TestOrderEventsHandler(t *testing.T) {
	cache := memory.NewStatusCache()
	h := NewOrderEventsHandler(cache)
	ctx := context.Background()

	placed := JSONHandler[usecase.OrderPlacedMsg]{HandleFunc: h.HandlePlaced}
	paid := JSONHandler[usecase.OrderPaidMsg]{HandleFunc: h.HandlePaid}

	require.NoError(t, placed.Handle(ctx, amqp.Delivery{Body: []byte(`{"orderId":4,"paid":false}`)}))
	st, ok, _ := cache.GetStatus(ctx, 4)
	require.True(t, ok)
	assert.Equal(t, domain.StatusUnpaid, st)

	require.NoError(t, paid.Handle(ctx, amqp.Delivery{Body: []byte(`{"orderId":4}`)}))
	st, _, _ = cache.GetStatus(ctx, 4)
	assert.Equal(t, domain.StatusPaid, st)

	// a late order.placed must not downgrade
	require.NoError(t, placed.Handle(ctx, amqp.Delivery{Body: []byte(`{"orderId":4,"paid":false}`)}))
	st, _, _ = cache.GetStatus(ctx, 4)
	assert.Equal(t, domain.StatusPaid, st)

	err := paid.Handle(ctx, amqp.Delivery{Body: []byte(`not json`)})
	assert.ErrorIs(t, err, ErrMalformed)
}
