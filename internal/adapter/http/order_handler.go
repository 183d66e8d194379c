package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	timeouts
	query    *usecase.OrderQuery
	invoices *usecase.Invoices
	renderer usecase.InvoiceRenderer
}

func NewOrderHandler(query *usecase.OrderQuery, invoices *usecase.Invoices, renderer usecase.InvoiceRenderer, timeout time.Duration) *OrderHandler {
	return &OrderHandler{timeouts: timeouts{timeout}, query: query, invoices: invoices, renderer: renderer}
}

type customerResp struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

type orderItemResp struct {
	ID          int64   `json:"id"`
	ProductID   *int64  `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	UnitPrice   string  `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	LineTotal   string  `json:"lineTotal"`
	TaxAmount   *string `json:"taxAmount"`
}

type orderResp struct {
	ID              int64           `json:"id"`
	Customer        customerResp    `json:"customer"`
	CreatedAt       time.Time       `json:"createdAt"`
	Paid            bool            `json:"paid"`
	Status          domain.Status   `json:"status"`
	ProviderOrderID string          `json:"providerOrderId,omitempty"`
	Items           []orderItemResp `json:"items"`
	Subtotal        string          `json:"subtotal"`
	// Tax and Total are null when an item lost its product.
	Tax   *string `json:"tax"`
	Total *string `json:"total"`
}

func toOrderResp(v usecase.OrderView) orderResp {
	o := v.Order
	r := orderResp{
		ID: o.ID,
		Customer: customerResp{
			FirstName: o.Customer.FirstName, LastName: o.Customer.LastName, Email: o.Customer.Email,
			Phone: o.Customer.Phone, Address: o.Customer.Address, City: o.Customer.City,
		},
		CreatedAt:       o.CreatedAt,
		Paid:            o.Paid,
		Status:          v.Status,
		ProviderOrderID: o.ProviderOrderID,
		Items:           []orderItemResp{},
		Subtotal:        domain.Money(o.Subtotal()),
	}
	for _, it := range o.Items {
		ir := orderItemResp{
			ID:        it.ID,
			UnitPrice: domain.Money(it.UnitPrice),
			Quantity:  it.Quantity,
			LineTotal: domain.Money(it.LineTotal()),
		}
		if it.Product != nil {
			pid := it.Product.ID
			ir.ProductID = &pid
			ir.ProductName = it.Product.Name
			if tax, err := it.TaxAmount(); err == nil {
				s := domain.Money(tax)
				ir.TaxAmount = &s
			}
		}
		r.Items = append(r.Items, ir)
	}
	if v.Totals != nil {
		tax, total := domain.Money(v.Totals.Tax), domain.Money(v.Totals.Total)
		r.Tax, r.Total = &tax, &total
	}
	return r
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, errorResp{Error: "order_not_found", Message: usecase.ErrOrderNotFound.Error()})
		return 0, false
	}
	return id, true
}

// GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	v, err := h.query.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(v))
}

// GET /v1/admin/orders/:id (orders.read)
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	v, err := h.query.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	st, err := h.query.Status(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	logging.From(c).Info("back-office order lookup", "order_id", id, "client_id", middleware.ClientID(c))
	c.JSON(http.StatusOK, gin.H{
		"order":             toOrderResp(v),
		"cachedStatus":      st,
		"providerPaymentId": v.Order.ProviderPaymentID,
	})
}

// GET /v1/orders/:id/invoice
func (h *OrderHandler) Invoice(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	inv, err := h.invoices.Build(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	// render fully before writing so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, inv); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+inv.Filename())
	c.Data(http.StatusOK, h.renderer.ContentType(), buf.Bytes())
}
