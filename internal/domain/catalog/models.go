package catalog

import "github.com/shopspring/decimal"

// Product is the storefront's view of a sellable item. Cart lines hold a
// snapshot of the product as it looked at add-time; the order service
// re-reads the authoritative row at checkout.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"categoryId,omitempty"`
	Featured    bool            `json:"featured"`
	Active      bool            `json:"active"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Active      bool   `json:"active"`
}
