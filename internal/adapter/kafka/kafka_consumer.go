package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
)

// HandlerFunc processes a decoded event.
type HandlerFunc func(ctx context.Context, ev usecase.PaymentCallbackMsg) error

// Consumer consumes a topic with a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
	Logger *slog.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc) *Consumer {
	return &Consumer{
		Group:  group,
		Topics: topics,
		Handle: h,
		Logger: logging.New("kafka-consumer"),
	}
}

// Start blocks until ctx is cancelled or the group fails.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.Group.Errors() {
			c.Logger.Error("consumer group error", "err", err)
		}
	}()

	handler := &cgHandler{handle: c.Handle, logger: c.Logger}
	for {
		if err := c.Group.Consume(ctx, c.Topics, handler); err != nil {
			return err
		}
		// When Consume returns, it's because ctx was cancelled or a rebalance happened.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
	logger *slog.Logger
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		log := h.logger.With("topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

		var ev usecase.PaymentCallbackMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Warn("kafka decode error", "err", err)
			// mark to avoid reprocessing poison
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(logging.WithCtx(sess.Context(), log), ev); err != nil {
			log.Error("handler error", "err", err, "key", string(msg.Key))
			// Not marked; redelivered after a restart or rebalance.
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
