package store

import (
	"github.com/shopspring/decimal"

	"github.com/example/minishop/internal/domain/catalog"
)

// SeedDemoData loads a small catalog into a MemoryStore for the
// no-database dev mode.
func SeedDemoData(m *MemoryStore) {
	m.PutCategory(catalog.Category{ID: "cat-electronics", Name: "Electronics", Active: true})
	m.PutCategory(catalog.Category{ID: "cat-accessories", Name: "Accessories", Active: true})

	m.PutProduct(catalog.Product{
		ID:         "prod-keyboard",
		Name:       "Mechanical Keyboard",
		Price:      decimal.RequireFromString("89.99"),
		ImageURL:   "https://picsum.photos/300/200?random=1",
		Stock:      25,
		CategoryID: "cat-electronics",
		Featured:   true,
		Active:     true,
	})
	m.PutProduct(catalog.Product{
		ID:         "prod-mouse",
		Name:       "Wireless Mouse",
		Price:      decimal.RequireFromString("39.99"),
		ImageURL:   "https://picsum.photos/300/200?random=2",
		Stock:      40,
		CategoryID: "cat-electronics",
		Active:     true,
	})
	m.PutProduct(catalog.Product{
		ID:         "prod-stand",
		Name:       "Laptop Stand",
		Price:      decimal.RequireFromString("24.50"),
		ImageURL:   "https://picsum.photos/300/200?random=3",
		Stock:      15,
		CategoryID: "cat-accessories",
		Active:     true,
	})
}
