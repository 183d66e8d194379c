package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes a single delivery. It should be idempotent.
// Return nil => ACK; ErrMalformed => drop; other errors => NACK with the Router's requeue setting.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}
