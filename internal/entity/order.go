package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingProductReference = errors.New("order item has no product reference")
	ErrInvalidCustomer         = errors.New("invalid customer details")
)

type Status string

const (
	StatusUnpaid Status = "UNPAID"
	StatusPaid   Status = "PAID"
)

type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validate requires everything but the last name.
func (c Customer) Validate() error {
	for _, v := range []string{c.FirstName, c.Email, c.Phone, c.Address, c.City} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidCustomer
		}
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidCustomer
	}
	return nil
}

type Order struct {
	ID                int64
	Customer          Customer
	CreatedAt         time.Time
	ProviderOrderID   string // empty until a payment is started
	ProviderPaymentID string // empty until paid through the provider
	Paid              bool
	Items             []OrderItem
}

func (o *Order) Status() Status {
	if o.Paid {
		return StatusPaid
	}
	return StatusUnpaid
}

// OrderItem snapshots the unit price at order time. Product is the live catalog
// row and is nil once that product has been deleted.
type OrderItem struct {
	ID        int64
	Product   *Product
	UnitPrice decimal.Decimal
	Quantity  int
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TaxAmount uses the product's current tax rate, not a snapshot.
func (i OrderItem) TaxAmount() (decimal.Decimal, error) {
	if i.Product == nil {
		return decimal.Zero, ErrMissingProductReference
	}
	return LineTax(i.Product.TaxPercent, i.LineTotal()), nil
}

func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Totals fails with ErrMissingProductReference if any item lost its product.
func (o *Order) Totals() (Totals, error) {
	tax := decimal.Zero
	for _, it := range o.Items {
		t, err := it.TaxAmount()
		if err != nil {
			return Totals{}, err
		}
		tax = tax.Add(t)
	}
	return NewTotals(o.Subtotal(), tax), nil
}

func (o *Order) TotalTax() (decimal.Decimal, error) {
	t, err := o.Totals()
	return t.Tax, err
}

func (o *Order) Total() (decimal.Decimal, error) {
	t, err := o.Totals()
	return t.Total, err
}
