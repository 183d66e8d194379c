package http

import (
	"net/http"
	"time"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	timeouts
	cart *usecase.Cart
}

func NewCartHandler(cart *usecase.Cart, timeout time.Duration) *CartHandler {
	return &CartHandler{timeouts: timeouts{timeout}, cart: cart}
}

type addItemReq struct {
	ProductID flexString `json:"productId" form:"product_id"`
	Quantity  flexString `json:"quantity" form:"quantity"`
}

type updateItemReq struct {
	Action    string     `json:"action" form:"action"`
	ProductID flexString `json:"productId" form:"product_id"`
}

type cartLineResp struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
	TaxAmount string `json:"taxAmount"`
}

type totalsResp struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func toTotals(t domain.Totals) totalsResp {
	return totalsResp{Subtotal: domain.Money(t.Subtotal), Tax: domain.Money(t.Tax), Total: domain.Money(t.Total)}
}

type cartResp struct {
	Lines []cartLineResp `json:"lines"`
	totalsResp
	CartCount int `json:"cartCount"`
}

// GET /v1/cart
func (h *CartHandler) View(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	view, err := h.cart.View(ctx, middleware.SessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := cartResp{Lines: []cartLineResp{}, totalsResp: toTotals(view.Totals), CartCount: view.Count}
	for _, l := range view.Lines {
		resp.Lines = append(resp.Lines, cartLineResp{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: domain.Money(l.UnitPrice),
			LineTotal: domain.Money(l.LineTotal),
			TaxAmount: domain.Money(l.TaxAmount),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// POST /v1/cart/items (JSON or form)
func (h *CartHandler) Add(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "malformed body")
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.cart.Add(ctx, usecase.AddItemInput{
		SessionID: middleware.SessionID(c),
		ProductID: string(req.ProductID),
		Quantity:  string(req.Quantity),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartCount": out.CartCount, "total": domain.Money(out.Total)})
}

// POST /v1/cart/items/update (JSON or form)
func (h *CartHandler) Update(c *gin.Context) {
	var req updateItemReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "malformed body")
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.cart.Update(ctx, middleware.SessionID(c), usecase.CartAction(req.Action), string(req.ProductID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		totalsResp
		CartCount int `json:"cartCount"`
	}{toTotals(out.Totals), out.CartCount})
}
