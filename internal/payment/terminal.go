package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"coffee-pos/internal/order"
)

// declinedLast4 triggers a simulated card decline, the classic test-card
// convention.
const declinedLast4 = "0000"

// Terminal is the simulated settlement collaborator: a fixed processing
// delay and a deterministic decline trigger for card payments. Cash and
// mobile always settle.
type Terminal struct {
	delay time.Duration
	log   *zap.Logger
}

func NewTerminal(delay time.Duration, log *zap.Logger) *Terminal {
	return &Terminal{delay: delay, log: log}
}

// Settle resolves after the configured delay, honoring context
// cancellation.
func (t *Terminal) Settle(ctx context.Context, o *order.Order, req Request) (Result, error) {
	timer := time.NewTimer(t.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-timer.C:
	}

	if req.Method == Card && req.CardLast4 == declinedLast4 {
		t.log.Info("settlement declined",
			zap.String("order", o.Number),
			zap.String("method", string(req.Method)))
		return Result{Success: false, Reason: "card declined: insufficient funds"}, nil
	}

	t.log.Info("settlement approved",
		zap.String("order", o.Number),
		zap.String("method", string(req.Method)),
		zap.String("amount", o.Total.StringFixed(2)))
	return Result{Success: true}, nil
}
