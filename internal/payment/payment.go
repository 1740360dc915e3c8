// Package payment drives settlement: the method vocabulary, the cash tender
// rules, the settlement contract and the order status transition the outcome
// produces. The terminal behind the contract is simulated; the rest of the
// system only sees the resolved outcome.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coffee-pos/internal/order"
)

// Method identifies how the customer pays. The set is extensible; Label
// covers the known ones.
type Method string

const (
	Card   Method = "card"
	Cash   Method = "cash"
	Mobile Method = "mobile"
)

// Valid reports whether m is a known method.
func (m Method) Valid() bool { return m == Card || m == Cash || m == Mobile }

// Label returns the display name for the method.
func (m Method) Label() string {
	switch m {
	case Card:
		return "Credit/Debit Card"
	case Cash:
		return "Cash"
	case Mobile:
		return "Mobile Payment"
	default:
		return string(m)
	}
}

var (
	// ErrUnknownMethod is returned for a method outside the vocabulary.
	ErrUnknownMethod = errors.New("unknown payment method")
	// ErrInsufficientTender is returned before settlement when cash tendered
	// is below the order total.
	ErrInsufficientTender = errors.New("tendered amount is below the order total")
	// ErrNotPending is returned when settlement is attempted on an order
	// that already left the pending state.
	ErrNotPending = errors.New("order is not awaiting payment")
)

// Request carries what the register collected for one settlement attempt.
// Tendered is meaningful for cash only. CardLast4 is meaningful for card
// only and exists so the simulated terminal has something to decline.
type Request struct {
	Method    Method          `json:"method"`
	Tendered  decimal.Decimal `json:"tendered,omitempty"`
	CardLast4 string          `json:"card_last4,omitempty"`
}

// Result is the resolved settlement outcome.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Settler is the external settlement collaborator. Settle blocks until the
// attempt resolves; an error means the attempt itself could not run, a
// Result with Success false means the terminal declined.
type Settler interface {
	Settle(ctx context.Context, o *order.Order, req Request) (Result, error)
}

// Change returns the cash change due for display. It assumes the tender was
// already validated; negative results never escape Process.
func Change(total, tendered decimal.Decimal) decimal.Decimal {
	return tendered.Sub(total)
}

// Process runs one settlement attempt end to end: validates the request,
// invokes the settler, and applies the resulting status transition. Cash
// must cover the total before the settler is ever invoked. On success the
// order completes and the change due (cash only) is returned; on decline the
// order is left pending so the register can retry or switch method.
func Process(ctx context.Context, s Settler, o *order.Order, req Request, now func() time.Time) (Result, decimal.Decimal, error) {
	if now == nil {
		now = time.Now
	}
	if !req.Method.Valid() {
		return Result{}, decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
	}
	if o.Status != order.StatusPending {
		return Result{}, decimal.Zero, fmt.Errorf("%w: status %s", ErrNotPending, o.Status)
	}
	if req.Method == Cash && req.Tendered.LessThan(o.Total) {
		return Result{}, decimal.Zero, fmt.Errorf("%w: tendered %s, total %s",
			ErrInsufficientTender, req.Tendered.StringFixed(2), o.Total.StringFixed(2))
	}

	res, err := s.Settle(ctx, o, req)
	if err != nil {
		return Result{}, decimal.Zero, fmt.Errorf("settle order %s: %w", o.Number, err)
	}
	if !res.Success {
		return res, decimal.Zero, nil
	}
	if err := o.Transition(order.StatusCompleted, now().UTC()); err != nil {
		return Result{}, decimal.Zero, err
	}
	change := decimal.Zero
	if req.Method == Cash {
		change = Change(o.Total, req.Tendered)
	}
	return res, change, nil
}
