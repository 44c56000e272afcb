package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/minishop/internal/domain/cart"
	"github.com/example/minishop/internal/domain/catalog"
	"github.com/example/minishop/internal/domain/order"
)

// fakePlacer records submissions and serves a canned response.
type fakePlacer struct {
	calls   []order.Order
	resp    order.Order
	err     error
	release chan struct{} // when set, PlaceOrder blocks until closed
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, o order.Order) (order.Order, error) {
	f.calls = append(f.calls, o)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return order.Order{}, f.err
	}
	return f.resp, nil
}

// userMessageErr mimics the client's API error type.
type userMessageErr struct {
	status  int
	message string
}

func (e *userMessageErr) Error() string       { return e.message }
func (e *userMessageErr) UserMessage() string { return e.message }

func newTestWorkflow(placer OrderPlacer) (*Workflow, *cart.Store) {
	c := cart.NewStore()
	w := NewWorkflow(c, placer, Config{SuccessDisplay: 20 * time.Millisecond})
	return w, c
}

func fillValidForm(w *Workflow) {
	w.SetField(FieldName, gofakeit.Name())
	w.SetField(FieldEmail, gofakeit.Email())
	w.SetField(FieldPhone, "0401234567")
	w.SetField(FieldAddress, gofakeit.Street())
}

func addLine(c *cart.Store, id, name, price string, quantity int) {
	p := catalog.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
	for i := 0; i < quantity; i++ {
		c.AddItem(p)
	}
}

func TestWorkflow_Submit_AllFieldsEmpty(t *testing.T) {
	placer := &fakePlacer{}
	w, c := newTestWorkflow(placer)
	addLine(c, "prod-1", "Keyboard", "49.99", 1)

	_, err := w.Submit(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 4)
	assert.Empty(t, placer.calls, "validation failure must not reach the network")
	assert.Equal(t, StateIdle, w.State())
}

func TestWorkflow_Submit_EmptyCart(t *testing.T) {
	placer := &fakePlacer{}
	w, _ := newTestWorkflow(placer)
	fillValidForm(w)

	_, err := w.Submit(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, placer.calls, "empty-cart failure must not reach the network")
	assert.Equal(t, StateIdle, w.State())
	assert.Equal(t, "Cart is empty", w.LastError())
}

func TestWorkflow_Submit_InvalidEmailBlocksNetwork(t *testing.T) {
	placer := &fakePlacer{}
	w, c := newTestWorkflow(placer)
	addLine(c, "prod-1", "Keyboard", "49.99", 1)
	fillValidForm(w)
	w.SetField(FieldEmail, "not-an-email")

	_, err := w.Submit(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Please enter a valid email", vErr.Fields[FieldEmail])
	assert.Len(t, vErr.Fields, 1)
	assert.Empty(t, placer.calls)
}

func TestWorkflow_Submit_Success(t *testing.T) {
	placer := &fakePlacer{resp: order.Order{ID: "order-1", Status: order.StatusPending}}
	w, c := newTestWorkflow(placer)
	addLine(c, "prod-a", "Product A", "10.00", 2)
	addLine(c, "prod-b", "Product B", "5.50", 1)
	fillValidForm(w)

	placed, err := w.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "order-1", placed.ID)

	// Payload assembled from the cart snapshot.
	require.Len(t, placer.calls, 1)
	sent := placer.calls[0]
	require.Len(t, sent.Items, 2)
	assert.Equal(t, "prod-a", sent.Items[0].ProductID)
	assert.Equal(t, 2, sent.Items[0].Quantity)
	assert.True(t, sent.Total.Equal(decimal.RequireFromString("25.50")), "total = %s", sent.Total)
	assert.Equal(t, order.StatusPending, sent.Status)
	assert.NotEmpty(t, sent.Customer.Email)

	// Success clears the cart and resets the form.
	assert.True(t, c.IsEmpty())
	assert.Equal(t, CustomerInfo{}, w.Customer())
	assert.Equal(t, StateSucceeded, w.State())

	// The success flag is held for the display period, then Idle again.
	assert.Eventually(t, func() bool { return w.State() == StateIdle },
		time.Second, 5*time.Millisecond)
}

func TestWorkflow_SecondSuccessRestartsDisplayWindow(t *testing.T) {
	placer := &fakePlacer{resp: order.Order{ID: "order-1"}}
	c := cart.NewStore()
	w := NewWorkflow(c, placer, Config{SuccessDisplay: 200 * time.Millisecond})

	addLine(c, "prod-1", "Keyboard", "49.99", 1)
	fillValidForm(w)
	_, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, w.State())

	// Second success lands inside the first one's display window.
	time.Sleep(100 * time.Millisecond)
	addLine(c, "prod-2", "Mouse", "19.99", 1)
	fillValidForm(w)
	_, err = w.Submit(context.Background())
	require.NoError(t, err)

	// The first timer's deadline passes; the restarted window holds.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, StateSucceeded, w.State())

	assert.Eventually(t, func() bool { return w.State() == StateIdle },
		time.Second, 5*time.Millisecond)
}

func TestWorkflow_Submit_TrimsCustomerInfo(t *testing.T) {
	placer := &fakePlacer{}
	w, c := newTestWorkflow(placer)
	addLine(c, "prod-1", "Keyboard", "49.99", 1)
	w.SetField(FieldName, "  Maija Meikäläinen ")
	w.SetField(FieldEmail, " maija@example.com ")
	w.SetField(FieldPhone, " 0401234567")
	w.SetField(FieldAddress, "Mannerheimintie 1 ")

	_, err := w.Submit(context.Background())

	require.NoError(t, err)
	require.Len(t, placer.calls, 1)
	assert.Equal(t, "Maija Meikäläinen", placer.calls[0].Customer.Name)
	assert.Equal(t, "maija@example.com", placer.calls[0].Customer.Email)
}

func TestWorkflow_Submit_APIErrorMessageSurfaced(t *testing.T) {
	placer := &fakePlacer{err: &userMessageErr{status: 500, message: "out of stock"}}
	w, c := newTestWorkflow(placer)
	addLine(c, "prod-a", "Product A", "10.00", 2)
	fillValidForm(w)
	info := w.Customer()

	_, err := w.Submit(context.Background())

	var sErr *SubmissionError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "out of stock", sErr.Message)
	assert.Equal(t, "out of stock", w.LastError())
	assert.Equal(t, StateIdle, w.State())

	// Cart and form are preserved so the user can retry.
	assert.Equal(t, 2, c.ItemCount())
	assert.Equal(t, info, w.Customer())
}

func TestWorkflow_Submit_TransportErrorGetsGenericMessage(t *testing.T) {
	placer := &fakePlacer{err: errors.New("dial tcp: connection refused")}
	w, c := newTestWorkflow(placer)
	addLine(c, "prod-1", "Keyboard", "49.99", 1)
	fillValidForm(w)

	_, err := w.Submit(context.Background())

	var sErr *SubmissionError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "Order failed. Please try again.", sErr.Message)
	// The raw transport error stays available as the cause, not the message.
	assert.Contains(t, errors.Unwrap(sErr).Error(), "connection refused")
}

func TestWorkflow_Submit_BlocksWhileInFlight(t *testing.T) {
	placer := &fakePlacer{
		resp:    order.Order{ID: "order-1"},
		release: make(chan struct{}),
	}
	w, c := newTestWorkflow(placer)
	addLine(c, "prod-1", "Keyboard", "49.99", 1)
	fillValidForm(w)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := w.Submit(context.Background())
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return w.State() == StateSubmitting },
		time.Second, time.Millisecond)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	// The cart stays editable while the call is in flight.
	c.AddItem(catalog.Product{ID: "prod-2", Name: "Mouse", Price: decimal.RequireFromString("19.99")})

	close(placer.release)
	<-done
	require.Len(t, placer.calls, 1)
}

func TestWorkflow_FieldErrorsVisibleOnlyAfterBlur(t *testing.T) {
	w, _ := newTestWorkflow(&fakePlacer{})

	w.SetField(FieldEmail, "not-an-email")
	assert.Empty(t, w.FieldErrors(), "untouched field shows no error")

	w.BlurField(FieldEmail)
	assert.Equal(t, "Please enter a valid email", w.FieldErrors()[FieldEmail])

	// Fixing the field clears the error as the user types.
	w.SetField(FieldEmail, "a@b.com")
	assert.Empty(t, w.FieldErrors())
}

func TestWorkflow_SubmitRevealsAllFieldErrors(t *testing.T) {
	w, c := newTestWorkflow(&fakePlacer{})
	addLine(c, "prod-1", "Keyboard", "49.99", 1)

	assert.Empty(t, w.FieldErrors())

	_, err := w.Submit(context.Background())

	require.Error(t, err)
	assert.Len(t, w.FieldErrors(), 4)
}

func TestWorkflow_StrictPhone(t *testing.T) {
	c := cart.NewStore()
	w := NewWorkflow(c, &fakePlacer{}, Config{StrictPhone: true, SuccessDisplay: time.Minute})
	addLine(c, "prod-1", "Keyboard", "49.99", 1)
	fillValidForm(w)
	w.SetField(FieldPhone, "123")

	_, err := w.Submit(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Phone number must be 10-15 digits", vErr.Fields[FieldPhone])
}
