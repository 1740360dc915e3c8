package session

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-pos/internal/cart"
	"coffee-pos/internal/catalog"
	"coffee-pos/internal/order"
)

func newRegistry() *Registry {
	n := 0
	return NewRegistry(func() string { n++; return fmt.Sprintf("sess-%d", n) })
}

func TestOpenAndMutate(t *testing.T) {
	r := newRegistry()
	s := r.Open()
	require.Equal(t, "sess-1", s.ID)

	item := catalog.Item{ID: "espresso", Name: "Espresso", BasePrice: decimal.RequireFromString("2.00")}
	err := r.Mutate(s.ID, func(s *Session) error {
		s.Cart = s.Cart.Add(cart.NewLineItem("li-1", item, nil, 1))
		return nil
	})
	require.NoError(t, err)

	err = r.View(s.ID, func(s *Session) error {
		assert.Len(t, s.Cart.Items, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestUnknownSession(t *testing.T) {
	r := newRegistry()
	assert.ErrorIs(t, r.Mutate("nope", func(*Session) error { return nil }), ErrNotFound)
	assert.ErrorIs(t, r.View("nope", func(*Session) error { return nil }), ErrNotFound)
}

func TestBeginPaymentRequiresPendingOrder(t *testing.T) {
	r := newRegistry()
	s := r.Open()
	_, err := r.BeginPayment(s.ID)
	assert.ErrorIs(t, err, ErrNoPendingOrder)
}

func TestPaymentLocksMutation(t *testing.T) {
	r := newRegistry()
	s := r.Open()
	require.NoError(t, r.Mutate(s.ID, func(s *Session) error {
		s.Pending = &order.Order{ID: "o-1", Status: order.StatusPending}
		return nil
	}))

	o, err := r.BeginPayment(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "o-1", o.ID)

	assert.ErrorIs(t, r.Mutate(s.ID, func(*Session) error { return nil }), ErrPaymentInFlight)
	_, err = r.BeginPayment(s.ID)
	assert.ErrorIs(t, err, ErrPaymentInFlight)

	// Declined settlement: lock released, cart and pending order preserved.
	r.EndPayment(s.ID, false)
	require.NoError(t, r.Mutate(s.ID, func(s *Session) error {
		assert.NotNil(t, s.Pending)
		return nil
	}))

	// Completed settlement: session reset for the next customer.
	_, err = r.BeginPayment(s.ID)
	require.NoError(t, err)
	r.EndPayment(s.ID, true)
	require.NoError(t, r.View(s.ID, func(s *Session) error {
		assert.Nil(t, s.Pending)
		assert.True(t, s.Cart.Empty())
		return nil
	}))
}

func TestClose(t *testing.T) {
	r := newRegistry()
	s := r.Open()
	r.Close(s.ID)
	assert.ErrorIs(t, r.View(s.ID, func(*Session) error { return nil }), ErrNotFound)
}
