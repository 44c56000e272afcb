package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/minishop/internal/domain/catalog"
	"github.com/example/minishop/internal/domain/order"
)

func newSeededStore() *MemoryStore {
	m := NewMemoryStore()
	m.PutCategory(catalog.Category{ID: "cat-1", Name: "Electronics", Active: true})
	m.PutProduct(catalog.Product{
		ID: "prod-a", Name: "Product A",
		Price: decimal.RequireFromString("10.00"), Stock: 10, CategoryID: "cat-1", Active: true,
	})
	m.PutProduct(catalog.Product{
		ID: "prod-b", Name: "Product B",
		Price: decimal.RequireFromString("5.50"), Stock: 3, CategoryID: "cat-1", Active: true,
	})
	return m
}

func pendingOrder(items ...order.Item) order.Order {
	return order.Order{
		Customer: order.Customer{
			Name: "Maija Meikäläinen", Email: "maija@example.com",
			Phone: "0401234567", Address: "Mannerheimintie 1",
		},
		Items:  items,
		Status: order.StatusPending,
	}
}

func TestMemoryStore_CreateOrder(t *testing.T) {
	m := newSeededStore()
	ctx := context.Background()

	created, err := m.CreateOrder(ctx, pendingOrder(
		order.Item{ProductID: "prod-a", Quantity: 2},
		order.Item{ProductID: "prod-b", Quantity: 1},
	))

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, order.StatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	// Items are re-priced from the catalog, total recomputed.
	assert.Equal(t, "Product A", created.Items[0].ProductName)
	assert.True(t, created.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, created.Total.Equal(decimal.RequireFromString("25.50")), "total = %s", created.Total)

	// Stock decremented.
	a, err := m.Product(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, 8, a.Stock)
}

func TestMemoryStore_CreateOrder_NoItems(t *testing.T) {
	m := newSeededStore()

	_, err := m.CreateOrder(context.Background(), pendingOrder())

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestMemoryStore_CreateOrder_UnknownProduct(t *testing.T) {
	m := newSeededStore()

	_, err := m.CreateOrder(context.Background(), pendingOrder(
		order.Item{ProductID: "prod-missing", Quantity: 1},
	))

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_CreateOrder_InsufficientStock(t *testing.T) {
	m := newSeededStore()

	_, err := m.CreateOrder(context.Background(), pendingOrder(
		order.Item{ProductID: "prod-a", Quantity: 1},
		order.Item{ProductID: "prod-b", Quantity: 4}, // only 3 in stock
	))

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Not enough stock for product: Product B", stockErr.Error())

	// A rejected order must not touch stock, including earlier lines.
	a, err := m.Product(context.Background(), "prod-a")
	require.NoError(t, err)
	assert.Equal(t, 10, a.Stock)
}

func TestMemoryStore_CreateOrder_DuplicateLinesOverdrawStock(t *testing.T) {
	m := newSeededStore()

	// Each line fits the 3-unit stock on its own; together they ask for 4.
	_, err := m.CreateOrder(context.Background(), pendingOrder(
		order.Item{ProductID: "prod-b", Quantity: 2},
		order.Item{ProductID: "prod-b", Quantity: 2},
	))

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Not enough stock for product: Product B", stockErr.Error())

	b, err := m.Product(context.Background(), "prod-b")
	require.NoError(t, err)
	assert.Equal(t, 3, b.Stock, "rejected order must leave stock untouched")
}

func TestMemoryStore_CreateOrder_DuplicateLinesWithinStock(t *testing.T) {
	m := newSeededStore()
	ctx := context.Background()

	_, err := m.CreateOrder(ctx, pendingOrder(
		order.Item{ProductID: "prod-b", Quantity: 1},
		order.Item{ProductID: "prod-b", Quantity: 2},
	))

	require.NoError(t, err)
	b, err := m.Product(ctx, "prod-b")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Stock)
}

func TestMemoryStore_OrderFilters(t *testing.T) {
	m := newSeededStore()
	ctx := context.Background()

	first, err := m.CreateOrder(ctx, pendingOrder(order.Item{ProductID: "prod-a", Quantity: 1}))
	require.NoError(t, err)

	second := pendingOrder(order.Item{ProductID: "prod-b", Quantity: 1})
	second.Customer.Email = "Toinen@example.com"
	_, err = m.CreateOrder(ctx, second)
	require.NoError(t, err)

	_, _, err = m.UpdateOrderStatus(ctx, first.ID, order.StatusProcessing)
	require.NoError(t, err)

	all, err := m.Orders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	processing, err := m.OrdersByStatus(ctx, order.StatusProcessing)
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, first.ID, processing[0].ID)

	// Email match is case-insensitive.
	byEmail, err := m.OrdersByCustomerEmail(ctx, "toinen@example.com")
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	inRange, err := m.OrdersByDateRange(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	outOfRange, err := m.OrdersByDateRange(ctx, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, outOfRange)
}

func TestMemoryStore_UpdateOrderStatus_InvalidTransition(t *testing.T) {
	m := newSeededStore()
	ctx := context.Background()

	o, err := m.CreateOrder(ctx, pendingOrder(order.Item{ProductID: "prod-a", Quantity: 1}))
	require.NoError(t, err)

	_, _, err = m.UpdateOrderStatus(ctx, o.ID, order.StatusDelivered)
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, _, err = m.UpdateOrderStatus(ctx, o.ID, order.StatusCancelled)
	require.NoError(t, err)

	_, _, err = m.UpdateOrderStatus(ctx, o.ID, order.StatusProcessing)
	assert.ErrorIs(t, err, order.ErrOrderCancelled)
}

func TestMemoryStore_UpdateOrderStatus_ReturnsPreviousStatus(t *testing.T) {
	m := newSeededStore()
	ctx := context.Background()

	o, err := m.CreateOrder(ctx, pendingOrder(order.Item{ProductID: "prod-a", Quantity: 1}))
	require.NoError(t, err)

	updated, previous, err := m.UpdateOrderStatus(ctx, o.ID, order.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, previous)
	assert.Equal(t, order.StatusProcessing, updated.Status)

	_, previous, err = m.UpdateOrderStatus(ctx, o.ID, order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, previous)
}

func TestMemoryStore_UpdateOrderStatus_NotFound(t *testing.T) {
	m := newSeededStore()

	_, _, err := m.UpdateOrderStatus(context.Background(), "missing", order.StatusProcessing)

	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestMemoryStore_DeleteOrder(t *testing.T) {
	m := newSeededStore()
	ctx := context.Background()

	o, err := m.CreateOrder(ctx, pendingOrder(order.Item{ProductID: "prod-a", Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, m.DeleteOrder(ctx, o.ID))

	_, err = m.Order(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)

	assert.ErrorIs(t, m.DeleteOrder(ctx, o.ID), order.ErrNotFound)
}

func TestMemoryStore_ProductsByCategory(t *testing.T) {
	m := newSeededStore()
	m.PutProduct(catalog.Product{ID: "prod-c", Name: "Product C",
		Price: decimal.RequireFromString("1.00"), Stock: 1, CategoryID: "cat-2"})

	products, err := m.ProductsByCategory(context.Background(), "cat-1")

	require.NoError(t, err)
	assert.Len(t, products, 2)
}
