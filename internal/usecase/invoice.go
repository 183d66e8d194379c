package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
)

// Invoice is the informational content of an order's invoice. Amounts are
// already formatted with 2 fraction digits.
type Invoice struct {
	OrderID      int64
	CustomerName string
	Email        string
	CreatedAt    time.Time
	Paid         bool
	Lines        []InvoiceLine
	Subtotal     string
	Tax          string
	Total        string
	Currency     string
}

type InvoiceLine struct {
	ProductName string
	Quantity    int
	LineTotal   string
	TaxPercent  string
	TaxAmount   string
}

func (inv Invoice) Filename() string {
	return fmt.Sprintf("invoice_order_%d.pdf", inv.OrderID)
}

type Invoices struct {
	orders   OrderRepo
	currency string
}

func NewInvoices(orders OrderRepo, currency string) *Invoices {
	return &Invoices{orders: orders, currency: currency}
}

// Build fails with ErrMissingProductReference when any item lost its product.
func (uc *Invoices) Build(ctx context.Context, orderID int64) (Invoice, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return Invoice{}, err
	}

	inv := Invoice{
		OrderID:      o.ID,
		CustomerName: o.Customer.FullName(),
		Email:        o.Customer.Email,
		CreatedAt:    o.CreatedAt,
		Paid:         o.Paid,
		Currency:     uc.currency,
	}
	for _, it := range o.Items {
		tax, err := it.TaxAmount()
		if err != nil {
			return Invoice{}, fmt.Errorf("order %d item %d: %w", o.ID, it.ID, err)
		}
		inv.Lines = append(inv.Lines, InvoiceLine{
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			LineTotal:   domain.Money(it.LineTotal()),
			TaxPercent:  domain.Money(it.Product.TaxPercent),
			TaxAmount:   domain.Money(tax),
		})
	}

	tot, err := o.Totals()
	if err != nil {
		return Invoice{}, err
	}
	inv.Subtotal = domain.Money(tot.Subtotal)
	inv.Tax = domain.Money(tot.Tax)
	inv.Total = domain.Money(tot.Total)
	return inv, nil
}
