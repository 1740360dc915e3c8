// Package barista consumes settled-order tickets and prints them for the
// prep station.
package barista

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"coffee-pos/internal/mq"
)

// Config tunes one worker instance.
type Config struct {
	Name     string
	Prefetch int
}

// Run consumes the barista queue until the context is cancelled. Malformed
// tickets are rejected without requeue and land on the dead letter queue.
func Run(ctx context.Context, client *mq.Client, cfg Config, log *zap.Logger) error {
	deliveries, err := client.Consume(mq.BaristaQueue, cfg.Name, cfg.Prefetch)
	if err != nil {
		return fmt.Errorf("consume %s: %w", mq.BaristaQueue, err)
	}
	log.Info("barista worker started",
		zap.String("worker", cfg.Name),
		zap.Int("prefetch", cfg.Prefetch))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var t mq.Ticket
			if err := json.Unmarshal(d.Body, &t); err != nil {
				log.Error("malformed ticket, dead-lettering",
					zap.Error(err),
					zap.String("correlation_id", d.CorrelationId))
				_ = d.Nack(false, false)
				continue
			}
			printTicket(t)
			log.Info("ticket printed",
				zap.String("order", t.Number),
				zap.String("fulfillment", t.Fulfillment),
				zap.Int("lines", len(t.Items)))
			_ = d.Ack(false)
		}
	}
}

func printTicket(t mq.Ticket) {
	var b strings.Builder
	fmt.Fprintf(&b, "== ORDER %s (%s", t.Number, t.Fulfillment)
	if t.Table != "" {
		fmt.Fprintf(&b, ", table %s", t.Table)
	}
	b.WriteString(") ==\n")
	if t.CustomerName != "" {
		fmt.Fprintf(&b, "for %s\n", t.CustomerName)
	}
	for _, line := range t.Items {
		fmt.Fprintf(&b, "%dx %s\n", line.Quantity, line.Name)
		for _, sel := range line.Selections {
			fmt.Fprintf(&b, "   + %s\n", sel)
		}
	}
	fmt.Fprint(os.Stdout, b.String())
}
