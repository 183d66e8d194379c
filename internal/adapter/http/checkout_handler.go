package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	timeouts
	checkout *usecase.Checkout
}

func NewCheckoutHandler(checkout *usecase.Checkout, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{timeouts: timeouts{timeout}, checkout: checkout}
}

type checkoutReq struct {
	FirstName string `json:"firstName" form:"first_name"`
	LastName  string `json:"lastName" form:"last_name"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone" form:"phone"`
	Address   string `json:"address" form:"address"`
	City      string `json:"city" form:"city"`
}

// POST /v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "malformed body")
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key") // prevent duplicated submits

	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.checkout.Execute(ctx, usecase.CheckoutInput{
		SessionID:      middleware.SessionID(c),
		IdempotencyKey: idemKey,
		Customer: domain.Customer{
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Email:     strings.TrimSpace(req.Email),
			Phone:     strings.TrimSpace(req.Phone),
			Address:   strings.TrimSpace(req.Address),
			City:      strings.TrimSpace(req.City),
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"orderId": out.OrderID, "paid": out.Paid})
}
