package mq

import (
	"time"

	"github.com/shopspring/decimal"

	"coffee-pos/internal/order"
)

// Ticket is the wire message the prep station receives for one settled
// order.
type Ticket struct {
	OrderID      string          `json:"order_id"`
	Number       string          `json:"number"`
	Fulfillment  string          `json:"fulfillment"`
	Table        string          `json:"table,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	Items        []TicketLine    `json:"items"`
	Total        decimal.Decimal `json:"total"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// TicketLine is one prep instruction: what to make, how many, and the chosen
// customizations by display name.
type TicketLine struct {
	Name       string   `json:"name"`
	Quantity   int      `json:"quantity"`
	Selections []string `json:"selections,omitempty"`
}

// NewTicket projects a settled order onto the wire shape.
func NewTicket(o *order.Order) Ticket {
	t := Ticket{
		OrderID:      o.ID,
		Number:       o.Number,
		Fulfillment:  string(o.Fulfillment),
		Table:        o.Table,
		CustomerName: o.CustomerName,
		Total:        o.Total,
		PlacedAt:     o.CreatedAt,
	}
	for _, li := range o.Items {
		line := TicketLine{Name: li.Item.Name, Quantity: li.Quantity}
		for _, sel := range li.Selections {
			line.Selections = append(line.Selections, sel.Name)
		}
		t.Items = append(t.Items, line)
	}
	return t
}

// RoutingKey routes tickets by fulfillment type under the topic exchange.
func (t Ticket) RoutingKey() string { return "ticket." + t.Fulfillment }
