package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Prices travel as bare JSON numbers on the wire, matching what the
// storefront sends and expects back.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrEmptyOrder      = errors.New("order must have at least one item")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrOrderShipped    = errors.New("cannot cancel an order that has shipped")
	ErrOrderDelivered  = errors.New("order is already delivered")
	ErrOrderCancelled  = errors.New("order is already cancelled")
)

// validTransitions defines allowed status transitions.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {}, // terminal
	StatusCancelled:  {}, // terminal
}

// ParseStatus maps the wire form onto a known status.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// CanTransitionTo reports whether the status may move to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionError returns the specific error for a rejected transition.
func (s Status) TransitionError(target Status) error {
	switch {
	case s == StatusCancelled:
		return ErrOrderCancelled
	case s == StatusDelivered && target != StatusDelivered:
		return ErrOrderDelivered
	case s == StatusShipped && target == StatusCancelled:
		return ErrOrderShipped
	default:
		return fmt.Errorf("%w transition: cannot move from %s to %s", ErrInvalidStatus, s, target)
	}
}

// Customer is the buyer information captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Item is one purchased line: a product snapshot plus quantity. Price is
// the unit price at purchase time.
type Item struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type Order struct {
	ID        string          `json:"id,omitempty"`
	Customer  Customer        `json:"customer"`
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

// ComputeTotal is the exact decimal sum of price * quantity over items.
func (o Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
