package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aq2208/gstore-api/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Router manages multiple consumers (one per registered queue) on a single AMQP channel.
type Router struct {
	ch            *amqp.Channel
	prefetch      int
	callTimeout   time.Duration
	requeueOnErr  bool
	log           *slog.Logger
	registrations []registration
}

type registration struct {
	queueName   string
	handler     Handler
	consumerTag string
}

// --- Options ---

type RouterOption func(*Router)

func WithPrefetch(n int) RouterOption          { return func(r *Router) { r.prefetch = n } }
func WithTimeout(d time.Duration) RouterOption { return func(r *Router) { r.callTimeout = d } }
func WithRequeue(b bool) RouterOption          { return func(r *Router) { r.requeueOnErr = b } }
func WithLogger(l *slog.Logger) RouterOption   { return func(r *Router) { r.log = l } }

// NewRouter constructs a Router. Defaults: prefetch=50, timeout=10s, requeueOnErr=true.
func NewRouter(ch *amqp.Channel, opts ...RouterOption) *Router {
	r := &Router{
		ch:           ch,
		prefetch:     50,
		callTimeout:  10 * time.Second,
		requeueOnErr: true,
		log:          logging.New("rmq-router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associates a queue with a handler. Call multiple times for multiple queues.
func (r *Router) Register(queueName string, h Handler) {
	r.registrations = append(r.registrations, registration{
		queueName:   queueName,
		handler:     h,
		consumerTag: "c_" + queueName,
	})
}

// Start begins consuming; non-blocking (spawns one goroutine per queue).
// QoS (prefetch) is set per-channel and applies to all consumers on this channel.
// Cancelling ctx cancels the consumers.
func (r *Router) Start(ctx context.Context) error {
	if err := r.ch.Qos(r.prefetch, 0, false); err != nil {
		return err
	}

	for _, reg := range r.registrations {
		deliveries, err := r.ch.Consume(
			reg.queueName,
			reg.consumerTag,
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return err
		}

		go r.consume(ctx, reg, deliveries)
	}

	go func() {
		<-ctx.Done()
		for _, reg := range r.registrations {
			_ = r.ch.Cancel(reg.consumerTag, false)
		}
	}()
	return nil
}

func (r *Router) consume(ctx context.Context, reg registration, msgs <-chan amqp.Delivery) {
	log := r.log.With("queue", reg.queueName, "tag", reg.consumerTag)
	for d := range msgs {
		hctx, cancel := context.WithTimeout(logging.WithCtx(ctx, log), r.callTimeout)
		err := reg.handler.Handle(hctx, d)
		cancel()
		_ = ack(d, err, r.requeueOnErr, log)
	}
	log.Info("consumer stopped")
}

// Acknowledger is the part of amqp.Delivery ack needs; split out for tests.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func ack(d Acknowledger, err error, requeue bool, log *slog.Logger) error {
	if err == nil {
		return d.Ack(false)
	}
	if errors.Is(err, ErrMalformed) {
		log.Warn("dropping malformed delivery", "err", err)
		return d.Nack(false, false)
	}
	log.Error("handler error", "err", err, "requeue", requeue)
	return d.Nack(false, requeue)
}
