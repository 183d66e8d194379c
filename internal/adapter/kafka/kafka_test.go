package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (s *fakeSession) Context() context.Context { return context.Background() }
func (s *fakeSession) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, m.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	ch chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func claimOf(values ...string) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for i, v := range values {
		ch <- &sarama.ConsumerMessage{Topic: "payments", Offset: int64(i), Value: []byte(v)}
	}
	close(ch)
	return &fakeClaim{ch: ch}
}

func TestConsumeClaimMarksHandledAndPoison(t *testing.T) {
	var seen []usecase.PaymentCallbackMsg
	h := &cgHandler{
		logger: logging.New("test"),
		handle: func(_ context.Context, ev usecase.PaymentCallbackMsg) error {
			seen = append(seen, ev)
			if ev.ProviderOrderID == "order_fail" {
				return errors.New("db down")
			}
			return nil
		},
	}
	sess := &fakeSession{}

	err := h.ConsumeClaim(sess, claimOf(
		`{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"ab"}`,
		`garbage`,
		`{"razorpay_order_id":"order_fail","razorpay_payment_id":"pay_2","razorpay_signature":"cd"}`,
	))
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, "pay_1", seen[0].ProviderPaymentID)
	assert.Equal(t, []int64{0, 1}, sess.marked)
}

type fakeConfirmer struct {
	err error
	in  usecase.ConfirmPaymentInput
}

func (f *fakeConfirmer) Execute(_ context.Context, in usecase.ConfirmPaymentInput) (usecase.ConfirmPaymentOutput, error) {
	f.in = in
	return usecase.ConfirmPaymentOutput{OrderID: 9}, f.err
}

func TestPaymentCallbackHandler(t *testing.T) {
	ctx := context.Background()
	ev := usecase.PaymentCallbackMsg{ProviderOrderID: "order_1", ProviderPaymentID: "pay_1", Signature: "ab"}

	c := &fakeConfirmer{}
	require.NoError(t, NewPaymentCallbackHandler(c).Handle(ctx, ev))
	assert.Equal(t, "order_1", c.in.ProviderOrderID)
	assert.Empty(t, c.in.SessionID)

	c = &fakeConfirmer{err: usecase.ErrSignatureVerificationFailed}
	assert.NoError(t, NewPaymentCallbackHandler(c).Handle(ctx, ev), "rejections are not retried")

	c = &fakeConfirmer{err: errors.New("mysql gone")}
	assert.Error(t, NewPaymentCallbackHandler(c).Handle(ctx, ev))
}
