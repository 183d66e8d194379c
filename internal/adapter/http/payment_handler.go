package http

import (
	"net/http"
	"time"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	timeouts
	start   *usecase.StartPayment
	confirm *usecase.ConfirmPayment
}

func NewPaymentHandler(start *usecase.StartPayment, confirm *usecase.ConfirmPayment, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{timeouts: timeouts{timeout}, start: start, confirm: confirm}
}

type startPaymentResp struct {
	OrderID         int64  `json:"orderId"`
	ProviderOrderID string `json:"providerOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"keyId"`
}

// POST /v1/orders/:id/payment
func (h *PaymentHandler) Start(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.start.Execute(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, startPaymentResp{
		OrderID:         out.OrderID,
		ProviderOrderID: out.ProviderOrderID,
		Amount:          out.AmountMinor,
		Currency:        out.Currency,
		KeyID:           out.KeyID,
	})
}

// The checkout widget posts razorpay_* form fields; API clients send JSON.
type confirmReq struct {
	PaymentID string `json:"paymentId" form:"razorpay_payment_id"`
	OrderID   string `json:"orderId" form:"razorpay_order_id"`
	Signature string `json:"signature" form:"razorpay_signature"`
}

// POST /v1/payments/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req confirmReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "malformed body")
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.confirm.Execute(ctx, usecase.ConfirmPaymentInput{
		SessionID:         middleware.SessionID(c),
		ProviderOrderID:   req.OrderID,
		ProviderPaymentID: req.PaymentID,
		Signature:         req.Signature,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": out.OrderID, "duplicate": out.Duplicate})
}
