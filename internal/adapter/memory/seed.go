package memory

import (
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/shopspring/decimal"
)

// Seed loads a small demo catalog for local runs.
func Seed(s *Store) {
	s.AddCategory(domain.Category{ID: 1, Name: "Electronics", Slug: "electronics"})
	s.AddCategory(domain.Category{ID: 2, Name: "Books", Slug: "books"})

	s.AddProduct(domain.Product{
		ID: 1, CategoryID: 1, Name: "USB-C Cable", Slug: "usb-c-cable",
		Price: decimal.RequireFromString("100.00"), TaxPercent: decimal.RequireFromString("5.00"), Stock: 50,
	})
	s.AddProduct(domain.Product{
		ID: 2, CategoryID: 1, Name: "Wireless Mouse", Slug: "wireless-mouse",
		Price: decimal.RequireFromString("50.00"), TaxPercent: decimal.RequireFromString("5.00"), Stock: 20,
	})
	s.AddProduct(domain.Product{
		ID: 3, CategoryID: 2, Name: "The Go Programming Language", Slug: "gopl",
		Price: decimal.RequireFromString("19.99"), TaxPercent: decimal.RequireFromString("12.00"), Stock: 10,
	})
}
