// Package store holds the order service's persistence layer: a
// PostgreSQL system of record and an in-memory implementation used by
// tests and the no-database dev mode.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/minishop/internal/domain/catalog"
	"github.com/example/minishop/internal/domain/order"
)

var ErrProductNotFound = errors.New("Product not found")

// StockError rejects an order line that asks for more units than the
// product row holds. Its text is shown to the customer verbatim.
type StockError struct {
	ProductName string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Not enough stock for product: %s", e.ProductName)
}

// OrderStore persists orders. CreateOrder owns the whole placement
// write: it re-prices every item from the catalog, checks and decrements
// stock, recomputes the total, and stores the order atomically. Status
// updates are validated against the order status transition table;
// UpdateOrderStatus also reports the status the order held before the
// update, read under the same lock as the write.
type OrderStore interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	Order(ctx context.Context, id string) (order.Order, error)
	Orders(ctx context.Context) ([]order.Order, error)
	OrdersByStatus(ctx context.Context, status order.Status) ([]order.Order, error)
	OrdersByCustomerEmail(ctx context.Context, email string) ([]order.Order, error)
	OrdersByDateRange(ctx context.Context, start, end time.Time) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, order.Status, error)
	DeleteOrder(ctx context.Context, id string) error
}

// CatalogStore serves the storefront's product and category reads.
type CatalogStore interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Product(ctx context.Context, id string) (catalog.Product, error)
	ProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]catalog.Category, error)
}
