package cart

import (
	"github.com/shopspring/decimal"

	"github.com/example/minishop/internal/domain/catalog"
)

// Line is one product plus its requested quantity. The product is a
// snapshot taken when the line was created.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price * quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store owns the in-memory cart for a single browsing session.
//
// Invariants: at most one line per product ID, every stored line has
// quantity >= 1, and the total is recomputed on every read rather than
// cached. A Store belongs to exactly one view tree at a time and is not
// safe for concurrent writers.
type Store struct {
	lines []Line
}

func NewStore() *Store {
	return &Store{}
}

// AddItem puts a product in the cart. Adding a product that is already
// present increments that line's quantity instead of duplicating it.
// Price validation is not this component's concern; a zero-price product
// is accepted as-is.
func (s *Store) AddItem(p catalog.Product) {
	for i := range s.lines {
		if s.lines[i].Product.ID == p.ID {
			s.lines[i].Quantity++
			return
		}
	}
	s.lines = append(s.lines, Line{Product: p, Quantity: 1})
}

// RemoveItem drops the line for productID. Unknown IDs are a no-op.
func (s *Store) RemoveItem(productID string) {
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity replaces the quantity on the line for productID. A
// quantity below 1 behaves exactly like RemoveItem. Unknown IDs are a
// no-op.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(productID)
		return
	}
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.lines = nil
}

// Total is the exact decimal sum of price * quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities, used for display badges.
func (s *Store) ItemCount() int {
	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

// Lines returns a snapshot of the cart in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}
