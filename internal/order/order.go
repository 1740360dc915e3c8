// Package order turns a cart into the immutable order record and owns the
// one piece of mutable lifecycle the record has: the status transition
// driven by the payment outcome.
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coffee-pos/internal/cart"
)

// Status is the order lifecycle. The only legal transitions are
// pending -> completed and pending -> cancelled; nothing leaves a terminal
// state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	// ErrEmptyCart is returned when assembly is attempted on a cart with no
	// line items.
	ErrEmptyCart = errors.New("cannot assemble an order from an empty cart")
	// ErrTableRequired is returned for dine-in assembly without a table.
	ErrTableRequired = errors.New("dine-in orders require a table")
	// ErrFulfillment is returned for an unknown fulfillment type.
	ErrFulfillment = errors.New("invalid fulfillment type")
	// ErrInvalidTransition is returned when a status change would leave a
	// terminal state.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Order is the immutable checkout snapshot. Its line items are a deep copy
// taken at assembly time; mutating the live cart afterwards cannot reach
// them. Subtotal, tax and total are derived once and never independently
// mutated.
type Order struct {
	ID           string           `json:"id"`
	Number       string           `json:"number"`
	Fulfillment  cart.Fulfillment `json:"fulfillment"`
	Table        string           `json:"table,omitempty"`
	CustomerName string           `json:"customer_name,omitempty"`
	Items        []cart.LineItem  `json:"items"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Tax          decimal.Decimal  `json:"tax"`
	Total        decimal.Decimal  `json:"total"`
	Status       Status           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Notes        string           `json:"notes,omitempty"`
}

// Transition moves the order to the next status, enforcing the lifecycle.
func (o *Order) Transition(next Status, at time.Time) error {
	if o.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	if next != StatusCompleted && next != StatusCancelled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = at
	return nil
}
