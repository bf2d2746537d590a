// Package checkout drives a cart through pricing, payment authorization
// and order submission as a small per-session state machine:
//
//	Idle -> AwaitingPayment -> Confirming -> Completed
//	                  \____________\______-> Failed
//
// The cart is cleared only on Completed. Every failure leaves it intact so
// the user can retry.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artisans-corner/storefront/internal/cart"
	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/payment"
)

// State is the checkout flow's current position.
type State int

const (
	StateIdle State = iota
	StateAwaitingPayment
	StateConfirming
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateConfirming:
		return "confirming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OrderPlacer records a durable order remotely. Implemented by
// service.OrderService.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, cmd *entity.PlaceOrder) (string, error)
}

// Draft is the priced snapshot of the cart fixed when a checkout begins.
// Amount and currency do not move after this point.
type Draft struct {
	Items    []entity.CartLineItem `json:"items"`
	Totals   Totals                `json:"totals"`
	Currency string                `json:"currency"`
}

// Config carries the flow's fixed parameters.
type Config struct {
	TaxRate  decimal.Decimal
	Currency string
	// Timeout bounds the payment-provider round-trip. Zero means the
	// 60 second default.
	Timeout time.Duration
}

const defaultTimeout = 60 * time.Second

// Flow is one session's checkout state machine. All transitions are
// guarded by a mutex; a second checkout cannot start while one is in
// flight for the same cart.
type Flow struct {
	mu       sync.Mutex
	state    State
	inFlight bool

	cart     *cart.Store
	provider payment.Provider
	orders   OrderPlacer
	cfg      Config

	draft      *Draft
	paymentRef string
}

func NewFlow(c *cart.Store, provider payment.Provider, orders OrderPlacer, cfg Config) *Flow {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Flow{
		cart:     c,
		provider: provider,
		orders:   orders,
		cfg:      cfg,
	}
}

// State returns the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// PaymentRef returns the provider reference of the last captured payment,
// retained after a failed order submission for reconciliation.
func (f *Flow) PaymentRef() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paymentRef
}

// Begin snapshots and prices the cart, moving the flow to AwaitingPayment.
// An empty cart short-circuits the whole flow. Begin is allowed from Idle,
// Completed and Failed; it rejects while a checkout is already underway.
func (f *Flow) Begin() (*Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateIdle, StateCompleted, StateFailed:
	default:
		return nil, ErrInvalidState
	}

	items := f.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	draft := &Draft{
		Items:    items,
		Totals:   ComputeTotals(items, f.cfg.TaxRate),
		Currency: f.cfg.Currency,
	}

	f.state = StateAwaitingPayment
	f.draft = draft
	f.paymentRef = ""

	slog.Info("Checkout started",
		"items", len(items),
		"subtotal", draft.Totals.Subtotal,
		"tax", draft.Totals.Tax,
		"total", draft.Totals.Total,
	)

	copied := *draft
	return &copied, nil
}

// Cancel aborts a checkout from AwaitingPayment back to Idle. Once
// Confirm has entered the provider round-trip the flow can no longer be
// cancelled and must run to completion.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateAwaitingPayment || f.inFlight {
		return ErrInvalidState
	}

	f.state = StateIdle
	f.draft = nil
	return nil
}

// Confirm runs the payment authorization and, on approval, submits the
// order. The provider call is bounded by the configured timeout. On
// success the cart is cleared and the new order id returned. On failure
// the cart is left untouched: a *PaymentError means no order call was
// made; an *OrderSubmissionError means money moved but no order was
// recorded, and the payment reference is retained.
func (f *Flow) Confirm(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	if f.state != StateAwaitingPayment || f.inFlight {
		f.mu.Unlock()
		return "", ErrInvalidState
	}
	f.inFlight = true
	draft := f.draft
	f.mu.Unlock()

	payCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	authz, err := f.provider.Authorize(payCtx, draft.Totals.Total, draft.Currency)
	cancel()
	if err != nil {
		f.fail("")
		slog.Error("Payment authorization failed", "err", err)
		return "", &PaymentError{Err: err}
	}

	f.mu.Lock()
	f.state = StateConfirming
	f.paymentRef = authz.Reference
	f.mu.Unlock()

	cmd := &entity.PlaceOrder{
		OrderID:     uuid.NewString(),
		UserID:      userID,
		Lines:       orderLines(draft.Items),
		PaymentRef:  authz.Reference,
		ClientTotal: draft.Totals.Total,
	}

	// Payment is captured: from here the submission must run to
	// completion even if the caller disconnects, so the remaining work is
	// detached from the request's cancellation and bounded by its own
	// deadline.
	subCtx, cancelSub := context.WithTimeout(context.WithoutCancel(ctx), f.cfg.Timeout)
	defer cancelSub()

	orderID, err := f.orders.PlaceOrder(subCtx, cmd)
	if err != nil {
		f.fail(authz.Reference)
		slog.Error("Order submission failed after payment capture",
			"payment_ref", authz.Reference, "err", err)
		return "", &OrderSubmissionError{PaymentRef: authz.Reference, Err: err}
	}

	f.cart.Clear(subCtx)

	f.mu.Lock()
	f.state = StateCompleted
	f.inFlight = false
	f.draft = nil
	f.mu.Unlock()

	slog.Info("Checkout completed", "order_id", orderID, "payment_ref", authz.Reference)
	return orderID, nil
}

// fail transitions to Failed, keeping the draft so a retry can Begin
// again from the same cart. A non-empty ref is the captured payment to
// hold on to for reconciliation.
func (f *Flow) fail(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateFailed
	f.inFlight = false
	if ref != "" {
		f.paymentRef = ref
	}
}

// orderLines reduces line items to what the order collaborator accepts:
// product id and quantity. Prices are re-derived server-side.
func orderLines(items []entity.CartLineItem) []entity.OrderLine {
	lines := make([]entity.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, entity.OrderLine{
			ProductID: item.ID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
