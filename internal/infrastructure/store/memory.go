package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/minishop/internal/domain/catalog"
	"github.com/example/minishop/internal/domain/order"
)

// MemoryStore implements OrderStore and CatalogStore in memory. It backs
// tests and the no-database dev mode.
type MemoryStore struct {
	mu         sync.RWMutex
	orders     []order.Order
	products   map[string]catalog.Product
	categories []catalog.Category
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string]catalog.Product)}
}

// PutProduct inserts or replaces a product row.
func (m *MemoryStore) PutProduct(p catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// PutCategory inserts a category row.
func (m *MemoryStore) PutCategory(c catalog.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = append(m.categories, c)
}

func (m *MemoryStore) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(o.Items) == 0 {
		return order.Order{}, order.ErrEmptyOrder
	}

	// Validate every line against running stock before touching the
	// catalog, so a failed order leaves it unchanged and duplicate lines
	// for one product cannot combine past its stock.
	remaining := make(map[string]int, len(o.Items))
	for i := range o.Items {
		p, ok := m.products[o.Items[i].ProductID]
		if !ok {
			return order.Order{}, fmt.Errorf("%w with id: %s", ErrProductNotFound, o.Items[i].ProductID)
		}
		if _, seen := remaining[p.ID]; !seen {
			remaining[p.ID] = p.Stock
		}
		remaining[p.ID] -= o.Items[i].Quantity
		if remaining[p.ID] < 0 {
			return order.Order{}, &StockError{ProductName: p.Name}
		}
	}

	for i := range o.Items {
		p := m.products[o.Items[i].ProductID]
		o.Items[i].ProductName = p.Name
		o.Items[i].Price = p.Price
		if o.Items[i].ImageURL == "" {
			o.Items[i].ImageURL = p.ImageURL
		}
		p.Stock -= o.Items[i].Quantity
		m.products[p.ID] = p
	}

	now := time.Now().UTC()
	o.ID = uuid.New().String()
	o.Status = order.StatusPending
	o.Total = o.ComputeTotal()
	o.CreatedAt = now
	o.UpdatedAt = now

	m.orders = append(m.orders, o)
	return o, nil
}

func (m *MemoryStore) Order(ctx context.Context, id string) (order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return order.Order{}, fmt.Errorf("%w with id: %s", order.ErrNotFound, id)
}

func (m *MemoryStore) Orders(ctx context.Context) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterOrders(func(order.Order) bool { return true }), nil
}

func (m *MemoryStore) OrdersByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterOrders(func(o order.Order) bool { return o.Status == status }), nil
}

func (m *MemoryStore) OrdersByCustomerEmail(ctx context.Context, email string) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterOrders(func(o order.Order) bool {
		return strings.EqualFold(o.Customer.Email, email)
	}), nil
}

func (m *MemoryStore) OrdersByDateRange(ctx context.Context, start, end time.Time) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterOrders(func(o order.Order) bool {
		return !o.CreatedAt.Before(start) && !o.CreatedAt.After(end)
	}), nil
}

func (m *MemoryStore) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, order.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID != id {
			continue
		}
		previous := m.orders[i].Status
		if !previous.CanTransitionTo(status) {
			return order.Order{}, "", previous.TransitionError(status)
		}
		m.orders[i].Status = status
		m.orders[i].UpdatedAt = time.Now().UTC()
		return m.orders[i], previous, nil
	}
	return order.Order{}, "", fmt.Errorf("%w with id: %s", order.ErrNotFound, id)
}

func (m *MemoryStore) DeleteOrder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w with id: %s", order.ErrNotFound, id)
}

func (m *MemoryStore) Products(ctx context.Context) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) Product(ctx context.Context, id string) (catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w with id: %s", ErrProductNotFound, id)
	}
	return p, nil
}

func (m *MemoryStore) ProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []catalog.Product
	for _, p := range m.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) Categories(ctx context.Context) ([]catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

// filterOrders returns matching orders newest first.
func (m *MemoryStore) filterOrders(keep func(order.Order) bool) []order.Order {
	out := []order.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if keep(m.orders[i]) {
			out = append(out, m.orders[i])
		}
	}
	return out
}
