package order

import (
	"time"

	"coffee-pos/internal/cart"
	"coffee-pos/internal/catalog"
	"coffee-pos/internal/ids"
	"coffee-pos/internal/pricing"
)

// Assembler snapshots carts into orders. Settings, id generation and the
// clock are injected so assembly is deterministic under test.
type Assembler struct {
	settings catalog.Settings
	ids      ids.Source
	now      func() time.Time
}

// NewAssembler builds an assembler. A nil clock defaults to time.Now.
func NewAssembler(settings catalog.Settings, src ids.Source, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{settings: settings, ids: src, now: now}
}

// Assemble snapshots the cart into a pending order. It refuses an empty
// cart and a dine-in cart without a table; both are typed failures the
// register UI prevents but callers cannot bypass here.
func (a *Assembler) Assemble(c cart.Cart, notes string) (*Order, error) {
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	if !c.Fulfillment.Valid() {
		return nil, ErrFulfillment
	}
	if c.Fulfillment == cart.DineIn && c.Table == "" {
		return nil, ErrTableRequired
	}

	subtotal := c.Subtotal()
	tax := pricing.Tax(subtotal, a.settings.TaxRate)
	now := a.now().UTC()

	o := &Order{
		ID:           a.ids.NewID(),
		Number:       a.ids.OrderNumber(a.settings.OrderNumberPrefix),
		Fulfillment:  c.Fulfillment,
		Table:        c.Table,
		CustomerName: c.CustomerName,
		Items:        copyItems(c.Items),
		Subtotal:     subtotal,
		Tax:          tax,
		Total:        pricing.Total(subtotal, tax),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		Notes:        notes,
	}
	return o, nil
}

// copyItems deep-copies the line items so the order holds no live reference
// into the cart.
func copyItems(items []cart.LineItem) []cart.LineItem {
	out := make([]cart.LineItem, len(items))
	for i, li := range items {
		li.Selections = append([]cart.Selection(nil), li.Selections...)
		li.Item.Groups = copyGroups(li.Item.Groups)
		out[i] = li
	}
	return out
}

func copyGroups(groups []catalog.Group) []catalog.Group {
	out := make([]catalog.Group, len(groups))
	for i, g := range groups {
		g.Options = append([]catalog.Option(nil), g.Options...)
		if g.MaxSelections != nil {
			max := *g.MaxSelections
			g.MaxSelections = &max
		}
		out[i] = g
	}
	return out
}
