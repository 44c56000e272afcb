package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/minishop/internal/domain/order"
	"github.com/example/minishop/internal/infrastructure/store"
)

// EventPublisher pushes order lifecycle events to the message bus. A nil
// publisher disables eventing (dev mode without Kafka).
type EventPublisher interface {
	OrderPlaced(ctx context.Context, o order.Order) error
	OrderStatusChanged(ctx context.Context, o order.Order, previous order.Status) error
}

type Handlers struct {
	orders  store.OrderStore
	catalog store.CatalogStore
	events  EventPublisher
}

func NewHandlers(orders store.OrderStore, catalog store.CatalogStore, events EventPublisher) *Handlers {
	return &Handlers{
		orders:  orders,
		catalog: catalog,
		events:  events,
	}
}

// Order handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		respondError(w, "invalid order payload", http.StatusBadRequest)
		return
	}

	if missingCustomerField(o.Customer) {
		respondError(w, "customer name, email, phone and address are required", http.StatusBadRequest)
		return
	}

	created, err := h.orders.CreateOrder(r.Context(), o)
	if err != nil {
		respondError(w, orderErrorMessage(err), orderErrorStatus(err))
		return
	}

	if h.events != nil {
		if err := h.events.OrderPlaced(r.Context(), created); err != nil {
			log.Printf("[API] Failed to publish order.placed for %s: %v", created.ID, err)
		}
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Orders(r.Context())
	if err != nil {
		respondError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/orders/")
	o, err := h.orders.Order(r.Context(), id)
	if err != nil {
		respondError(w, orderErrorMessage(err), orderErrorStatus(err))
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	raw := extractPathParam(r.URL.Path, "/api/orders/status/")
	status, err := order.ParseStatus(raw)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	orders, err := h.orders.OrdersByStatus(r.Context(), status)
	if err != nil {
		respondError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		respondError(w, "email query parameter is required", http.StatusBadRequest)
		return
	}

	orders, err := h.orders.OrdersByCustomerEmail(r.Context(), email)
	if err != nil {
		respondError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrdersByDateRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r.URL.Query().Get("startDate"))
	if err != nil {
		respondError(w, "invalid startDate", http.StatusBadRequest)
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("endDate"))
	if err != nil {
		respondError(w, "invalid endDate", http.StatusBadRequest)
		return
	}

	orders, err := h.orders.OrdersByDateRange(r.Context(), start, end)
	if err != nil {
		respondError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/api/orders/"), "/status")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, "invalid status payload", http.StatusBadRequest)
		return
	}

	status, err := order.ParseStatus(body.Status)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, previous, err := h.orders.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		respondError(w, orderErrorMessage(err), orderErrorStatus(err))
		return
	}

	if h.events != nil {
		if err := h.events.OrderStatusChanged(r.Context(), updated, previous); err != nil {
			log.Printf("[API] Failed to publish order.status_changed for %s: %v", updated.ID, err)
		}
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/orders/")
	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		respondError(w, orderErrorMessage(err), orderErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes the {"message": ...} shape the storefront reads
// verbatim.
func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"message": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func missingCustomerField(c order.Customer) bool {
	return strings.TrimSpace(c.Name) == "" ||
		strings.TrimSpace(c.Email) == "" ||
		strings.TrimSpace(c.Phone) == "" ||
		strings.TrimSpace(c.Address) == ""
}

func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func orderErrorStatus(err error) int {
	var stockErr *store.StockError
	switch {
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrOrderCancelled),
		errors.Is(err, order.ErrOrderShipped),
		errors.Is(err, order.ErrOrderDelivered),
		errors.Is(err, store.ErrProductNotFound),
		errors.As(err, &stockErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// orderErrorMessage keeps expected failures verbatim and hides internal
// ones behind a generic message.
func orderErrorMessage(err error) string {
	if orderErrorStatus(err) == http.StatusInternalServerError {
		log.Printf("[API] Internal error: %v", err)
		return "internal server error"
	}
	return err.Error()
}
