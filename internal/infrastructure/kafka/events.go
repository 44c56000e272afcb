package kafka

import (
	"time"

	"github.com/example/minishop/internal/domain/order"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message published for every order lifecycle change.
// PreviousStatus is set only on status changes.
type OrderEvent struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	Order          order.Order  `json:"order"`
	PreviousStatus order.Status `json:"previousStatus,omitempty"`
	OccurredAt     time.Time    `json:"occurredAt"`
}
