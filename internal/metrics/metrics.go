// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gstore",
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by action and result.",
		},
		[]string{"action", "result"},
	)

	Checkouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gstore",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		},
		[]string{"result"},
	)

	PaymentConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gstore",
			Name:      "payment_confirmations_total",
			Help:      "Payment confirmations by outcome (paid, duplicate, rejected, not_found, error).",
		},
		[]string{"outcome"},
	)

	OutboxRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gstore",
			Name:      "outbox_relayed_total",
			Help:      "Outbox events relayed to the broker by channel and result.",
		},
		[]string{"channel", "result"},
	)
)
