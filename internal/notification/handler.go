// Package notification turns order lifecycle events into customer
// emails.
package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/example/minishop/internal/domain/order"
	"github.com/example/minishop/internal/infrastructure/kafka"
)

// Sender delivers the actual notifications.
type Sender interface {
	SendOrderConfirmation(to string, o order.Order) error
	SendStatusUpdate(to string, o order.Order, previous order.Status) error
}

type Handler struct {
	sender Sender
}

func NewHandler(sender Sender) *Handler {
	return &Handler{sender: sender}
}

// HandleEvent is the kafka.EventHandler for the notifier consumer.
// Unknown event types are skipped so new producers can roll out first.
func (h *Handler) HandleEvent(ctx context.Context, event kafka.OrderEvent) error {
	to := event.Order.Customer.Email
	if to == "" {
		return fmt.Errorf("order event %s has no customer email", event.ID)
	}

	switch event.Type {
	case kafka.EventOrderPlaced:
		log.Printf("[Notifier] Order %s placed, sending confirmation to %s", event.Order.ID, to)
		return h.sender.SendOrderConfirmation(to, event.Order)
	case kafka.EventOrderStatusChanged:
		log.Printf("[Notifier] Order %s moved %s -> %s, notifying %s",
			event.Order.ID, event.PreviousStatus, event.Order.Status, to)
		return h.sender.SendStatusUpdate(to, event.Order, event.PreviousStatus)
	default:
		log.Printf("[Notifier] Skipping event type %q", event.Type)
		return nil
	}
}
