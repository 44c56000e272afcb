package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/minishop/internal/domain/cart"
	"github.com/example/minishop/internal/domain/order"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("an order submission is already in flight")
)

// ValidationError reports every failed field at once.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("customer information is invalid (%d field errors)", len(e.Fields))
}

// SubmissionError is a failed order submission translated into the
// message shown to the user. The raw transport or API error is kept as
// the cause and never surfaces unformatted.
type SubmissionError struct {
	Message string
	cause   error
}

func (e *SubmissionError) Error() string { return e.Message }
func (e *SubmissionError) Unwrap() error { return e.cause }

// OrderPlacer submits an assembled order to the order service.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, o order.Order) (order.Order, error)
}

type Config struct {
	// StrictPhone additionally requires the phone number to carry 10 to
	// 15 digits. Off by default: the baseline rule is non-empty only.
	StrictPhone bool
	// SuccessDisplay is how long the Succeeded state is held before the
	// workflow returns to Idle.
	SuccessDisplay time.Duration
}

const defaultSuccessDisplay = 5 * time.Second

// Workflow owns the customer-information form and drives checkout:
// Idle -> Validating -> Submitting -> Succeeded -> Idle. It reads the
// cart only at submit time and clears it only after a successful
// submission. All expected failures come back as error values; the cart
// and form survive them so the user can retry.
type Workflow struct {
	cart   *cart.Store
	placer OrderPlacer
	cfg    Config

	mu           sync.Mutex
	state        State
	info         CustomerInfo
	touched      map[Field]bool
	fieldErrs    FieldErrors
	lastErr      string
	successTimer *time.Timer
}

func NewWorkflow(c *cart.Store, placer OrderPlacer, cfg Config) *Workflow {
	if cfg.SuccessDisplay <= 0 {
		cfg.SuccessDisplay = defaultSuccessDisplay
	}
	return &Workflow{
		cart:      c,
		placer:    placer,
		cfg:       cfg,
		state:     StateIdle,
		touched:   make(map[Field]bool),
		fieldErrs: FieldErrors{},
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) Customer() CustomerInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.info
}

// FieldErrors returns the currently visible field errors: a field shows
// its error only once it has been blurred or a submit was attempted.
func (w *Workflow) FieldErrors() FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := FieldErrors{}
	for f, msg := range w.fieldErrs {
		out[f] = msg
	}
	return out
}

// LastError is the current general error message (submission failure or
// empty-cart), empty when there is none.
func (w *Workflow) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// SetField updates one customer field. Fields the user has already
// interacted with are re-validated as they change.
func (w *Workflow) SetField(f Field, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch f {
	case FieldName:
		w.info.Name = value
	case FieldEmail:
		w.info.Email = value
	case FieldPhone:
		w.info.Phone = value
	case FieldAddress:
		w.info.Address = value
	default:
		return
	}

	if w.touched[f] {
		w.revalidateField(f)
	}
}

// BlurField marks a field as interacted with and validates it, making
// its error visible.
func (w *Workflow) BlurField(f Field) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched[f] = true
	w.revalidateField(f)
}

func (w *Workflow) revalidateField(f Field) {
	if msg := validateField(f, w.info.field(f), w.cfg.StrictPhone); msg != "" {
		w.fieldErrs[f] = msg
	} else {
		delete(w.fieldErrs, f)
	}
}

// Submit validates the form and the cart, assembles the order payload
// from the cart snapshot, and sends it. On success the cart is cleared,
// the form reset, and the workflow holds Succeeded for the configured
// display period before returning to Idle. Validation and empty-cart
// failures never touch the network.
func (w *Workflow) Submit(ctx context.Context) (order.Order, error) {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return order.Order{}, ErrSubmissionInFlight
	}

	w.state = StateValidating
	w.lastErr = ""

	// A submit attempt reveals all outstanding field errors at once.
	for _, f := range allFields {
		w.touched[f] = true
	}
	w.fieldErrs = Validate(w.info, w.cfg.StrictPhone)
	if len(w.fieldErrs) > 0 {
		errs := FieldErrors{}
		for f, msg := range w.fieldErrs {
			errs[f] = msg
		}
		w.state = StateIdle
		w.mu.Unlock()
		return order.Order{}, &ValidationError{Fields: errs}
	}

	if w.cart.IsEmpty() {
		w.state = StateIdle
		w.lastErr = "Cart is empty"
		w.mu.Unlock()
		return order.Order{}, ErrEmptyCart
	}

	payload := w.buildOrder()
	w.state = StateSubmitting
	w.mu.Unlock()

	// The only network I/O in the workflow. The lock is released so the
	// cart stays editable while the call is in flight; re-submission is
	// blocked by the Submitting state.
	placed, err := w.placer.PlaceOrder(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateIdle
		w.lastErr = submissionMessage(err)
		return order.Order{}, &SubmissionError{Message: w.lastErr, cause: err}
	}

	w.cart.Clear()
	w.info = CustomerInfo{}
	w.touched = make(map[Field]bool)
	w.fieldErrs = FieldErrors{}
	w.state = StateSucceeded

	// A fresh success restarts the display window; a timer left over from
	// an earlier success must not cut it short.
	if w.successTimer != nil {
		w.successTimer.Stop()
	}
	w.successTimer = time.AfterFunc(w.cfg.SuccessDisplay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.state == StateSucceeded {
			w.state = StateIdle
		}
	})

	return placed, nil
}

func (w *Workflow) buildOrder() order.Order {
	info := w.info.Trimmed()
	lines := w.cart.Lines()

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Price:       l.Product.Price,
			Quantity:    l.Quantity,
			ImageURL:    l.Product.ImageURL,
		})
	}

	return order.Order{
		Customer: order.Customer{
			Name:    info.Name,
			Email:   info.Email,
			Phone:   info.Phone,
			Address: info.Address,
		},
		Items:  items,
		Total:  w.cart.Total(),
		Status: order.StatusPending,
	}
}

// submissionMessage picks the user-facing text for a failed submission:
// the API's message when it sent one, a generic fallback otherwise.
func submissionMessage(err error) string {
	var apiErr interface{ UserMessage() string }
	if errors.As(err, &apiErr) {
		if msg := apiErr.UserMessage(); msg != "" {
			return msg
		}
	}
	return "Order failed. Please try again."
}
