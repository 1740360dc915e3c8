// Package mq is the RabbitMQ edge: a topic exchange for settled-order
// tickets, a durable barista queue bound by fulfillment type, and a dead
// letter pair for tickets the prep station rejects.
package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// TicketExchange receives one message per settled order, routed
	// "ticket.<fulfillment>".
	TicketExchange = "pos.tickets"
	// BaristaQueue is the prep station's work queue.
	BaristaQueue = "barista.q"
	// DeadLetterExchange and DeadLetterQueue catch rejected tickets.
	DeadLetterExchange = "pos.dlx"
	DeadLetterQueue    = "pos.dlq"
)

// Client owns one connection and one channel.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects with exponential backoff so the service survives the broker
// coming up after it.
func Dial(ctx context.Context, url string) (*Client, error) {
	var conn *amqp.Connection
	op := func() error {
		var err error
		conn, err = amqp.Dial(url)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &Client{conn: conn, ch: ch}, nil
}

// Close shuts the channel and connection down.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// DeclareTopology declares the exchanges, queues and bindings. Idempotent;
// both the server and the worker call it on startup.
func (c *Client) DeclareTopology() error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("nil channel")
	}
	if err := c.ch.ExchangeDeclare(TicketExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(BaristaQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    DeadLetterExchange,
		"x-dead-letter-routing-key": "dlq",
	}); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.QueueBind(BaristaQueue, "ticket.*", TicketExchange, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(DeadLetterQueue, "dlq", DeadLetterExchange, false, nil)
}

// PublishTicket sends a persistent JSON body to the ticket exchange.
func (c *Client) PublishTicket(ctx context.Context, routingKey, correlationID string, body []byte) error {
	return c.ch.PublishWithContext(ctx, TicketExchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	})
}

// Consume opens a manually acked delivery stream with the given prefetch.
func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
