package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is the one place subtotal, tax and grand total are derived.
// Cart preview, order view, payment amount and invoice all go through NewTotals
// so the numbers agree to the cent.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// NewTotals rounds the summed tax to 2 places; subtotal is already exact.
func NewTotals(subtotal, rawTax decimal.Decimal) Totals {
	tax := rawTax.Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// LineTax returns pct% of lineTotal, unrounded.
func LineTax(pct, lineTotal decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred).Mul(lineTotal)
}

// Money formats an amount with 2 fraction digits.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// MinorUnits converts an amount to the provider's smallest currency unit (paise, cents).
func MinorUnits(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}
