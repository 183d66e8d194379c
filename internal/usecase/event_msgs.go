package usecase

import "time"

// Outbox channels double as broker routing keys.
const (
	ChannelOrderPlaced = "order.placed"
	ChannelOrderPaid   = "order.paid"
)

type OrderPlacedMsg struct {
	Type     string    `json:"type"`
	OrderID  int64     `json:"orderId"`
	Email    string    `json:"email"`
	Items    int       `json:"items"`
	Total    string    `json:"total"`
	Currency string    `json:"currency"`
	Paid     bool      `json:"paid"`
	At       time.Time `json:"at"`
}

type OrderPaidMsg struct {
	Type              string    `json:"type"`
	OrderID           int64     `json:"orderId"`
	ProviderOrderID   string    `json:"providerOrderId"`
	ProviderPaymentID string    `json:"providerPaymentId"`
	At                time.Time `json:"at"`
}

// Forwarded by the payment provider bridge on Kafka; same triple the browser posts.
type PaymentCallbackMsg struct {
	ProviderOrderID   string `json:"razorpay_order_id"`
	ProviderPaymentID string `json:"razorpay_payment_id"`
	Signature         string `json:"razorpay_signature"`
}
