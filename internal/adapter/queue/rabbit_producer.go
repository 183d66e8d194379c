package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/aq2208/gstore-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueOrderPlaced = "order.placed.q"
	QueueOrderPaid   = "order.paid.q"
)

var ErrNotConfirmed = errors.New("broker did not confirm publish")

// Publisher is what the outbox relay needs from a broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
}

// RabbitProducer publishes outbox rows to a topic exchange, one routing key per channel.
type RabbitProducer struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitProducer sets up the exchange, queues, and bindings once at startup.
func NewRabbitProducer(ch *amqp.Channel, exchange string) (*RabbitProducer, error) {
	// 1. declare exchange (topic type, durable)
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	// 2. one durable queue per event channel, bound by routing key
	bindings := map[string]string{
		QueueOrderPlaced: usecase.ChannelOrderPlaced,
		QueueOrderPaid:   usecase.ChannelOrderPaid,
	}
	for queue, key := range bindings {
		q, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("queue bind %s: %w", queue, err)
		}
	}

	// 3. publisher confirms; the relay marks a row sent only after the ack
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch, exchange: exchange}, nil
}

func (p *RabbitProducer) Publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		MessageId:    messageID,
		Type:         routingKey,
		Body:         body,
	}

	conf, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		pub,
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if conf != nil && !conf.Wait() {
		return ErrNotConfirmed
	}
	return nil
}

var _ Publisher = (*RabbitProducer)(nil)
