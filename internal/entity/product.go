package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxPercent applies to products created without an explicit rate.
var DefaultTaxPercent = decimal.NewFromInt(5)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"categoryId"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	TaxPercent  decimal.Decimal `json:"taxPercent"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
}
