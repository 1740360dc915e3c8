// Package cart models the live cart of one register session: an ordered
// sequence of line items plus fulfillment metadata. Every operation is a
// pure transformation returning the next cart state; nothing mutates its
// input.
package cart

import (
	"github.com/shopspring/decimal"

	"coffee-pos/internal/catalog"
	"coffee-pos/internal/pricing"
)

// Fulfillment says how the order leaves the counter.
type Fulfillment string

const (
	Takeaway Fulfillment = "takeaway"
	DineIn   Fulfillment = "dine-in"
)

// Valid reports whether f is a known fulfillment type.
func (f Fulfillment) Valid() bool { return f == Takeaway || f == DineIn }

// Selection is a snapshot of one chosen customization option, copied out of
// the catalog at selection time so later menu edits cannot retroactively
// change an order.
type Selection struct {
	GroupID       string          `json:"group_id"`
	OptionID      string          `json:"option_id"`
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

// LineItem is one cart entry. Item is a value snapshot of the catalog entry,
// not a live reference. UnitPrice is always base price plus the sum of the
// selection modifiers; it is recomputed on construction and never stored
// stale.
type LineItem struct {
	ID         string          `json:"id"`
	Item       catalog.Item    `json:"item"`
	Quantity   int             `json:"quantity"`
	Selections []Selection     `json:"selections,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// NewLineItem builds a line item with the unit price computed from the item
// base price and the selection modifiers.
func NewLineItem(id string, item catalog.Item, selections []Selection, quantity int) LineItem {
	mods := make([]decimal.Decimal, len(selections))
	for i, s := range selections {
		mods[i] = s.PriceModifier
	}
	return LineItem{
		ID:         id,
		Item:       item,
		Quantity:   quantity,
		Selections: append([]Selection(nil), selections...),
		UnitPrice:  pricing.UnitPrice(item.BasePrice, mods),
	}
}

// LineTotal is unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is the ordered line-item sequence plus fulfillment metadata. Two
// additions of the same item and customization combination stay distinct
// entries; insertion order is preserved.
type Cart struct {
	Items        []LineItem  `json:"items"`
	Fulfillment  Fulfillment `json:"fulfillment"`
	Table        string      `json:"table,omitempty"`
	CustomerName string      `json:"customer_name,omitempty"`
}

// New returns an empty takeaway cart.
func New() Cart { return Cart{Fulfillment: Takeaway} }

// Add appends a line item and returns the new cart. Quantity below 1 leaves
// the cart unchanged.
func (c Cart) Add(li LineItem) Cart {
	if li.Quantity < 1 {
		return c
	}
	next := c.clone()
	next.Items = append(next.Items, li)
	return next
}

// UpdateQuantity sets the quantity of the matching line item. A quantity of
// zero or less removes the line instead of zeroing it, so a non-empty cart
// never holds a quantity below 1.
func (c Cart) UpdateQuantity(lineID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(lineID)
	}
	next := c.clone()
	for i := range next.Items {
		if next.Items[i].ID == lineID {
			next.Items[i].Quantity = quantity
			break
		}
	}
	return next
}

// Remove filters out the matching line item. Removing an absent id is a
// no-op.
func (c Cart) Remove(lineID string) Cart {
	next := c.clone()
	items := make([]LineItem, 0, len(next.Items))
	for _, li := range next.Items {
		if li.ID != lineID {
			items = append(items, li)
		}
	}
	next.Items = items
	return next
}

// Clear empties the line items, preserving fulfillment metadata.
func (c Cart) Clear() Cart {
	next := c.clone()
	next.Items = nil
	return next
}

// Subtotal folds the lines through the pricing engine.
func (c Cart) Subtotal() decimal.Decimal {
	lines := make([]pricing.Line, len(c.Items))
	for i, li := range c.Items {
		lines[i] = pricing.Line{UnitPrice: li.UnitPrice, Quantity: li.Quantity}
	}
	return pricing.Subtotal(lines)
}

// Empty reports whether the cart has no line items.
func (c Cart) Empty() bool { return len(c.Items) == 0 }

// UnitCount is the number of units across all lines, for display.
func (c Cart) UnitCount() int {
	n := 0
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

func (c Cart) clone() Cart {
	next := c
	next.Items = append([]LineItem(nil), c.Items...)
	return next
}
