package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisans-corner/storefront/internal/cart"
	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/kvstore"
	"github.com/artisans-corner/storefront/internal/money"
	"github.com/artisans-corner/storefront/internal/payment"
)

// placerStub records PlaceOrder calls and can be told to reject them.
type placerStub struct {
	mu       sync.Mutex
	calls    []*entity.PlaceOrder
	failWith error
}

func (p *placerStub) PlaceOrder(ctx context.Context, cmd *entity.PlaceOrder) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, cmd)
	if p.failWith != nil {
		return "", p.failWith
	}
	return cmd.OrderID, nil
}

func (p *placerStub) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newTestCart(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	c := cart.NewStore(ctx, kvstore.NewMemory(), "cart_guest_s1")

	require.NoError(t, c.Add(ctx, entity.CartLineItem{ID: "1", Name: "Ceramic Vase", UnitPrice: 250000}))
	require.NoError(t, c.Add(ctx, entity.CartLineItem{ID: "1"}))
	require.NoError(t, c.Add(ctx, entity.CartLineItem{ID: "2", Name: "Silk Scarf", UnitPrice: 100000}))
	return c
}

func testConfig() Config {
	return Config{TaxRate: money.RateFromBasisPoints(1000), Currency: "INR", Timeout: time.Second}
}

func TestBeginPricesCart(t *testing.T) {
	f := NewFlow(newTestCart(t), &payment.Sandbox{}, &placerStub{}, testConfig())

	draft, err := f.Begin()
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingPayment, f.State())
	assert.Equal(t, int64(600000), draft.Totals.Subtotal)
	assert.Equal(t, int64(60000), draft.Totals.Tax)
	assert.Equal(t, int64(660000), draft.Totals.Total)
	assert.Equal(t, "INR", draft.Currency)
	require.Len(t, draft.Items, 2)
}

func TestBeginRejectsEmptyCart(t *testing.T) {
	ctx := context.Background()
	empty := cart.NewStore(ctx, kvstore.NewMemory(), "cart_guest_s1")
	f := NewFlow(empty, &payment.Sandbox{}, &placerStub{}, testConfig())

	_, err := f.Begin()
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateIdle, f.State())
}

func TestBeginRejectsWhileAwaitingPayment(t *testing.T) {
	f := NewFlow(newTestCart(t), &payment.Sandbox{}, &placerStub{}, testConfig())

	_, err := f.Begin()
	require.NoError(t, err)

	_, err = f.Begin()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelReturnsToIdle(t *testing.T) {
	c := newTestCart(t)
	f := NewFlow(c, &payment.Sandbox{}, &placerStub{}, testConfig())

	_, err := f.Begin()
	require.NoError(t, err)
	require.NoError(t, f.Cancel())

	assert.Equal(t, StateIdle, f.State())
	assert.Len(t, c.Items(), 2, "cancelling must not touch the cart")

	// A fresh checkout can start after cancelling.
	_, err = f.Begin()
	assert.NoError(t, err)
}

func TestCancelOnlyFromAwaitingPayment(t *testing.T) {
	f := NewFlow(newTestCart(t), &payment.Sandbox{}, &placerStub{}, testConfig())
	assert.ErrorIs(t, f.Cancel(), ErrInvalidState)
}

func TestConfirmHappyPath(t *testing.T) {
	c := newTestCart(t)
	placer := &placerStub{}
	f := NewFlow(c, &payment.Sandbox{}, placer, testConfig())

	_, err := f.Begin()
	require.NoError(t, err)

	orderID, err := f.Confirm(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, orderID)

	assert.Equal(t, StateCompleted, f.State())
	assert.Empty(t, c.Items(), "the cart is cleared on success")

	require.Equal(t, 1, placer.callCount())
	cmd := placer.calls[0]
	assert.Equal(t, "alice", cmd.UserID)
	assert.Equal(t, int64(660000), cmd.ClientTotal)
	assert.Contains(t, cmd.PaymentRef, "SIM-")
	// The order collaborator only sees product ids and quantities.
	assert.Equal(t, []entity.OrderLine{{ProductID: "1", Quantity: 2}, {ProductID: "2", Quantity: 1}}, cmd.Lines)
}

// cancelAwarePlacer refuses to record the order once its context is
// cancelled, like a real repository driving database/sql.
type cancelAwarePlacer struct {
	placerStub
}

func (p *cancelAwarePlacer) PlaceOrder(ctx context.Context, cmd *entity.PlaceOrder) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.placerStub.PlaceOrder(ctx, cmd)
}

func TestConfirmSurvivesCallerDisconnect(t *testing.T) {
	c := newTestCart(t)
	placer := &cancelAwarePlacer{}
	f := NewFlow(c, &payment.Sandbox{}, placer, testConfig())

	_, err := f.Begin()
	require.NoError(t, err)

	// The caller goes away right after confirming; once payment is
	// captured the order must still be recorded.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orderID, err := f.Confirm(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)
	assert.Equal(t, StateCompleted, f.State())
	assert.Equal(t, 1, placer.callCount())
	assert.Empty(t, c.Items())
}

func TestConfirmRequiresAwaitingPayment(t *testing.T) {
	f := NewFlow(newTestCart(t), &payment.Sandbox{}, &placerStub{}, testConfig())
	_, err := f.Confirm(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProviderFailureKeepsCartAndSkipsOrder(t *testing.T) {
	c := newTestCart(t)
	placer := &placerStub{}
	provider := &payment.Sandbox{FailWith: errors.New("card declined")}
	f := NewFlow(c, provider, placer, testConfig())

	_, err := f.Begin()
	require.NoError(t, err)

	_, err = f.Confirm(context.Background(), "alice")
	var payErr *PaymentError
	require.ErrorAs(t, err, &payErr)

	assert.Equal(t, StateFailed, f.State())
	assert.Len(t, c.Items(), 2, "cart must be untouched after a payment failure")
	assert.Zero(t, placer.callCount(), "no order call may be made when payment fails")
}

func TestProviderTimeoutFailsTheFlow(t *testing.T) {
	c := newTestCart(t)
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	provider := &payment.Sandbox{Delay: 500 * time.Millisecond}
	f := NewFlow(c, provider, &placerStub{}, cfg)

	_, err := f.Begin()
	require.NoError(t, err)

	_, err = f.Confirm(context.Background(), "alice")
	var payErr *PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateFailed, f.State())
}

func TestOrderRejectionRetainsPaymentRef(t *testing.T) {
	c := newTestCart(t)
	placer := &placerStub{failWith: errors.New("insufficient stock")}
	f := NewFlow(c, &payment.Sandbox{}, placer, testConfig())

	_, err := f.Begin()
	require.NoError(t, err)

	_, err = f.Confirm(context.Background(), "alice")
	var subErr *OrderSubmissionError
	require.ErrorAs(t, err, &subErr)

	assert.Equal(t, StateFailed, f.State())
	assert.Len(t, c.Items(), 2, "cart must not be cleared when the order was not recorded")
	assert.NotEmpty(t, subErr.PaymentRef)
	assert.Equal(t, subErr.PaymentRef, f.PaymentRef(), "the captured payment must stay available for reconciliation")
	assert.Contains(t, subErr.Error(), "payment captured but order not recorded")
}

func TestRetryAfterFailure(t *testing.T) {
	c := newTestCart(t)
	placer := &placerStub{failWith: errors.New("stock race")}
	f := NewFlow(c, &payment.Sandbox{}, placer, testConfig())

	_, err := f.Begin()
	require.NoError(t, err)
	_, err = f.Confirm(context.Background(), "alice")
	require.Error(t, err)

	placer.failWith = nil
	_, err = f.Begin()
	require.NoError(t, err)
	orderID, err := f.Confirm(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)
	assert.Equal(t, StateCompleted, f.State())
}
