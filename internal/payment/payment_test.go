package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coffee-pos/internal/order"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type scriptedSettler struct {
	res Result
	err error

	called bool
}

func (s *scriptedSettler) Settle(context.Context, *order.Order, Request) (Result, error) {
	s.called = true
	return s.res, s.err
}

func pendingOrder() *order.Order {
	return &order.Order{ID: "id-1", Number: "BB00000101", Total: dec("17.07"), Status: order.StatusPending}
}

func frozen() func() time.Time {
	at := time.Date(2025, 6, 1, 9, 31, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestMethodLabels(t *testing.T) {
	assert.Equal(t, "Credit/Debit Card", Card.Label())
	assert.Equal(t, "Cash", Cash.Label())
	assert.Equal(t, "Mobile Payment", Mobile.Label())
	assert.False(t, Method("crypto").Valid())
}

func TestProcessCashSuccessComputesChange(t *testing.T) {
	s := &scriptedSettler{res: Result{Success: true}}
	o := pendingOrder()

	res, change, err := Process(context.Background(), s, o, Request{Method: Cash, Tendered: dec("20.00")}, frozen())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "2.93", change.StringFixed(2))
	assert.Equal(t, order.StatusCompleted, o.Status)
}

func TestProcessCashInsufficientTenderBlocksSettler(t *testing.T) {
	s := &scriptedSettler{res: Result{Success: true}}
	o := pendingOrder()

	_, _, err := Process(context.Background(), s, o, Request{Method: Cash, Tendered: dec("15.00")}, frozen())
	assert.ErrorIs(t, err, ErrInsufficientTender)
	// The collaborator must not have been invoked at all.
	assert.False(t, s.called)
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestProcessCardSuccessHasNoChange(t *testing.T) {
	s := &scriptedSettler{res: Result{Success: true}}
	o := pendingOrder()

	_, change, err := Process(context.Background(), s, o, Request{Method: Card, CardLast4: "4242"}, frozen())
	require.NoError(t, err)
	assert.True(t, change.IsZero())
}

func TestProcessDeclineLeavesOrderPending(t *testing.T) {
	s := &scriptedSettler{res: Result{Success: false, Reason: "card declined"}}
	o := pendingOrder()

	res, _, err := Process(context.Background(), s, o, Request{Method: Card}, frozen())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "card declined", res.Reason)
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestProcessSettlerErrorLeavesOrderPending(t *testing.T) {
	s := &scriptedSettler{err: errors.New("terminal offline")}
	o := pendingOrder()

	_, _, err := Process(context.Background(), s, o, Request{Method: Mobile}, frozen())
	require.Error(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestProcessRejectsUnknownMethod(t *testing.T) {
	s := &scriptedSettler{res: Result{Success: true}}
	_, _, err := Process(context.Background(), s, pendingOrder(), Request{Method: "iou"}, frozen())
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.False(t, s.called)
}

func TestProcessRejectsSettledOrder(t *testing.T) {
	s := &scriptedSettler{res: Result{Success: true}}
	o := pendingOrder()
	require.NoError(t, o.Transition(order.StatusCompleted, frozen()()))

	_, _, err := Process(context.Background(), s, o, Request{Method: Card}, frozen())
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestTerminalDeclinesTestCard(t *testing.T) {
	term := NewTerminal(time.Millisecond, zap.NewNop())
	res, err := term.Settle(context.Background(), pendingOrder(), Request{Method: Card, CardLast4: "0000"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Reason)
}

func TestTerminalApproves(t *testing.T) {
	term := NewTerminal(time.Millisecond, zap.NewNop())
	res, err := term.Settle(context.Background(), pendingOrder(), Request{Method: Cash, Tendered: dec("20.00")})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestTerminalHonorsContext(t *testing.T) {
	term := NewTerminal(time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := term.Settle(ctx, pendingOrder(), Request{Method: Cash, Tendered: dec("20.00")})
	assert.ErrorIs(t, err, context.Canceled)
}
